package openai

// Prices in US dollars per 1K tokens.
type tokenPrice struct {
	input  float64
	output float64
}

var chatPrices = map[string]tokenPrice{
	"gpt-4o":      {input: 0.0025, output: 0.01},
	"gpt-4o-mini": {input: 0.00015, output: 0.0006},
}

// Dollars per audio minute.
var transcriptionPrices = map[string]float64{
	"whisper-1": 0.006,
}

// EstimateChatCost returns 0 for models without a known price.
func EstimateChatCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := chatPrices[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1000*p.input + float64(outputTokens)/1000*p.output
}

func EstimateTranscriptionCost(model string, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return transcriptionPrices[model] * minutes
}
