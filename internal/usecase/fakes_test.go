package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/google/uuid"
)

type fakeTranscriber struct {
	transcript *entity.Transcript
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte) (*entity.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.transcript, nil
}

type fakeExtractor struct {
	frames []entity.Frame
	err    error
	calls  int
	opts   port.ExtractOptions
}

func (f *fakeExtractor) ExtractFrames(_ context.Context, _ []byte, opts port.ExtractOptions) ([]entity.Frame, error) {
	f.calls++
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.frames, nil
}

// fakeScorer implements every scorer port and records what it was given.
type fakeScorer struct {
	hookErr      error
	thumbnailErr error
	contentErr   error

	hookCalls      int
	thumbnailCalls int
	contentCalls   int

	hookFrames    []entity.Frame
	hookText      string
	contentFrames []entity.Frame
	caption       string
}

func (f *fakeScorer) ScoreHook(_ context.Context, frames []entity.Frame, transcript string) (*entity.HookAnalysis, error) {
	f.hookCalls++
	f.hookFrames = frames
	f.hookText = transcript
	if f.hookErr != nil {
		return nil, f.hookErr
	}
	return &entity.HookAnalysis{Score: 72, KeyFrames: frames}, nil
}

func (f *fakeScorer) ScoreThumbnail(_ context.Context, _ []byte, caption string) (*entity.ThumbnailAnalysis, error) {
	f.thumbnailCalls++
	f.caption = caption
	if f.thumbnailErr != nil {
		return nil, f.thumbnailErr
	}
	return &entity.ThumbnailAnalysis{Score: 64, Clarity: 60, Composition: 65, Attention: 67}, nil
}

func (f *fakeScorer) ScoreVideoContent(_ context.Context, frames []entity.Frame, _, caption string) (*entity.ContentQuality, error) {
	f.contentCalls++
	f.contentFrames = frames
	f.caption = caption
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return &entity.ContentQuality{OverallScore: 70, VisualAppeal: 70, Engagement: 80, Relevance: 60}, nil
}

func (f *fakeScorer) ScoreImageContent(_ context.Context, _ []byte, caption string) (*entity.ContentQuality, error) {
	f.contentCalls++
	f.caption = caption
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return &entity.ContentQuality{OverallScore: 55, VisualAppeal: 50, Engagement: 55, Relevance: 60}, nil
}

type fakeRepo struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]entity.AnalysisJob
	embeddings map[uuid.UUID][]float32
	updates    []entity.JobStatus
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: map[uuid.UUID]entity.AnalysisJob{}, embeddings: map[uuid.UUID][]float32{}}
}

func (r *fakeRepo) Create(_ context.Context, job *entity.AnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	return nil
}

func (r *fakeRepo) Update(_ context.Context, job *entity.AnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	r.updates = append(r.updates, job.Status)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	return &job, nil
}

func (r *fakeRepo) SaveEmbedding(_ context.Context, id uuid.UUID, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings[id] = embedding
	return nil
}

func (r *fakeRepo) SearchSimilar(_ context.Context, _ []float32, _ int) ([]entity.SimilarAnalysis, error) {
	return nil, nil
}

type fakeStorage struct {
	objects  map[string][]byte
	reports  map[string][]byte
	archives map[string][]byte
	err      error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, reports: map[string][]byte{}, archives: map[string][]byte{}}
}

func (s *fakeStorage) DownloadMedia(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *fakeStorage) UploadReport(_ context.Context, key string, report []byte) error {
	if s.err != nil {
		return s.err
	}
	s.reports[key] = report
	return nil
}

func (s *fakeStorage) UploadArchive(_ context.Context, key string, r io.Reader, _ int64) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.archives[key] = data
	return nil
}

type fakeSource struct {
	mu       sync.Mutex
	data     map[string][]byte
	inFlight int
	peak     int
	calls    []string
}

func (s *fakeSource) Download(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if data, ok := s.data[url]; ok {
		return data, nil
	}
	return nil, errors.New("download media: unexpected status 404")
}

type fakeEmbedder struct {
	err error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeArchiver struct {
	names []string
}

func (a *fakeArchiver) CreateZip(_ context.Context, entries []port.ArchiveEntry, w io.Writer) error {
	for _, e := range entries {
		a.names = append(a.names, e.Name)
		if _, err := w.Write(e.Data); err != nil {
			return err
		}
	}
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *fakePublisher) PublishStatus(_ context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

type fakeDLQ struct {
	messages [][]byte
	reasons  []string
}

func (d *fakeDLQ) PublishToDLQ(_ context.Context, msg []byte, reason string) error {
	d.messages = append(d.messages, msg)
	d.reasons = append(d.reasons, reason)
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, email, jobID, mediaID, errorMsg string) error {
	n.sent = append(n.sent, email+"|"+jobID+"|"+mediaID+"|"+errorMsg)
	return nil
}
