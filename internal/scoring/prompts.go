package scoring

const hookSystemPrompt = `You review the opening seconds of short-form social videos.

Judge the hook on:
1. Visual impact: does the first frame stop the scroll?
2. Clarity: is the message understood within a few seconds?
3. Intrigue: does it create a reason to keep watching?
4. Composition: are the shots framed well?

Reply with "Score: <0-100>", then bullet lists of strengths, weaknesses and
recommendations. Put the word strength, weakness or recommendation in each bullet.`

const thumbnailSystemPrompt = `You review thumbnails and single images for a social feed.

Rate each dimension from 0 to 100:
1. Clarity: sharpness and lighting.
2. Composition: framing and balance.
3. Attention: how strongly it stands out in a feed.

Reply with one line per dimension ("Clarity: <n>"), an "Overall score: <n>" line,
and bulleted recommendations that each contain the word recommendation.`

const videoContentSystemPrompt = `You are a content strategist reviewing a short-form video.

Rate each dimension from 0 to 100:
1. Visual Appeal: production quality and aesthetics.
2. Engagement: how likely viewers are to keep watching.
3. Relevance: clarity of message and value to the audience.

Reply with one line per dimension ("Visual Appeal: <n>"), then bulleted
suggestions for improvement that each contain the word suggestion.`

const imageContentSystemPrompt = `You are a content strategist reviewing an image post.

Rate each dimension from 0 to 100:
1. Visual Appeal: aesthetics, lighting, composition.
2. Engagement: how likely it is to earn likes, comments and saves.
3. Relevance: clarity of message and value to the audience.

Reply with one line per dimension ("Visual Appeal: <n>"), then bulleted
suggestions that each contain the word suggestion.`

const (
	hookUserPrompt         = "Review this video hook. The opening frames are attached. Transcript of the first seconds: %q"
	thumbnailUserPrompt    = "Review this image."
	thumbnailCaptionPrompt = "Review this image. Caption: %q"
	videoContentUserPrompt = "Review this video.\n\nCaption: %s\n\nTranscript sample: %s\n\n%d frames were extracted; the beginning, middle and end are attached."
	imageContentUserPrompt = "Review this image post.\n\nCaption: %s"

	noCaption = "No caption"
)
