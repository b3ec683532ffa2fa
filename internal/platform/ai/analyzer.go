// Package ai wraps an OpenAI-compatible chat endpoint to produce advisory
// prescription summaries. Output is an HTML fragment for the client to embed.
// The analyzer is best-effort: any API failure yields a canned narrative
// clearly labeled as simulated, and nothing here ever feeds the safety
// validator or gates dispensing.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Analyzer struct {
	client  openai.Client
	model   string
	enabled bool
	logger  zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) *Analyzer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Analyzer{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		enabled: cfg.APIKey != "",
		logger:  logger,
	}
}

const recordPromptFormat = `You are a medical assistant AI. Analyze the following prescription data:
%s

1. Identify the likely medical condition being treated based on the combination of medicines.
2. Explain what each medicine is used for.
3. Check for any potential severe drug interactions between these specific medicines.
4. Provide a summary recommendation for the pharmacist.

Format the output as clear HTML. Do not use markdown code blocks, just return the raw HTML tags like <h3>, <p>, <ul>.`

const imagePrompt = `Analyze this prescription image.
1. Transcribe the text found in the image purely.
2. List the medicines found.
3. For each medicine, explain what condition it treats.
4. Provide any warnings or recommendations (e.g. allergies).
Format the output as HTML. Use <ul> for lists, <strong> for headers.`

// AnalyzeRecord summarizes a stored prescription described by contextText.
func (a *Analyzer) AnalyzeRecord(ctx context.Context, contextText string) string {
	if !a.enabled {
		return fallbackHTML(false)
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a helpful medical pharmacy assistant."),
			openai.UserMessage(fmt.Sprintf(recordPromptFormat, contextText)),
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		a.logger.Warn().Err(err).Msg("ai analysis failed, using simulated narrative")
		return fallbackHTML(false)
	}

	out := resp.Choices[0].Message.Content
	out = strings.ReplaceAll(out, "```html", "")
	out = strings.ReplaceAll(out, "```", "")
	return out
}

// AnalyzeImage summarizes an uploaded prescription photo.
func (a *Analyzer) AnalyzeImage(ctx context.Context, image []byte) string {
	if !a.enabled {
		return fallbackHTML(true)
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(imagePrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		MaxTokens: openai.Int(1000),
	})
	if err != nil || len(resp.Choices) == 0 {
		a.logger.Warn().Err(err).Msg("ai image analysis failed, using simulated narrative")
		return fallbackHTML(true)
	}

	return resp.Choices[0].Message.Content
}

func fallbackHTML(imageMode bool) string {
	var b strings.Builder
	b.WriteString(`<h3>AI Analysis Report (Simulation)</h3>
<div class="ai-notice"><strong>Notice:</strong> AI service unavailable. Showing simulated analysis for demonstration.</div>
`)
	if imageMode {
		b.WriteString(`<p><strong>Image Analysis:</strong> Scanned prescription image successfully.</p>
<ul>
<li><strong>Detected Text:</strong> "Rx: Amoxicillin 500mg, 1 tablet twice daily for 7 days."</li>
<li><strong>Medicines Identified:</strong> Amoxicillin</li>
<li><strong>Calculated Dosage:</strong> 500mg, BID (Two times a day)</li>
</ul>
<p><strong>Clinical Explanation:</strong> Amoxicillin is a penicillin antibiotic used to treat bacterial infections such as chest infections and dental abscesses.</p>
<p><strong>Safety Check:</strong> No immediate contraindications found in visual scan. Verify patient allergies.</p>`)
	} else {
		b.WriteString(`<p><strong>Data Analysis:</strong> Based on the digital record:</p>
<ul>
<li><strong>Condition Identified:</strong> Likely Bacterial Infection or Respiratory Tract Infection.</li>
<li><strong>Treatment Protocols:</strong> The prescribed antibiotic course is standard for this condition.</li>
<li><strong>Drug Interactions:</strong> No severe interactions detected with common concurrent medications (e.g. Paracetamol).</li>
</ul>
<p><strong>Recommendation:</strong> Dispense as prescribed. Advise patient to complete the full course even if they feel better.</p>`)
	}
	return b.String()
}
