package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"leilao_scraper/models"
)

const (
	markdownMaxTokens = 4096
	classifyMaxTokens = 1024
	analyzeMaxTokens  = 8192
)

const markdownSystem = `Você formata descrições de lotes de leilão judicial como Markdown.
Preserve todo o conteúdo. Não resuma, não invente, não traduza.
Responda apenas com o Markdown.`

const classifySystem = `Você analisa descrições de lotes de leilão judicial brasileiro.
Responda APENAS com um objeto JSON com estes campos:
  "tipo_direito": "propriedade" | "posse" | "direitos aquisitivos" | "fração ideal" | null
  "tipo_imovel": "apartamento" | "casa" | "terreno" | "comercial" | "rural" | "vaga de garagem" | null
  "hipoteca": true | false | null
  "alienacao_fiduciaria": true | false | null
  "debito_exequendo": número em reais ou null
Use null quando a descrição não permite concluir.`

const analyzeSystem = `Você é um analista de leilões de imóveis judiciais brasileiros.
Dado um lote, produza uma análise em português cobrindo: situação jurídica,
riscos (ocupação, dívidas propter rem, penhoras concorrentes), qualidade da
localização e atratividade do preço frente à avaliação. Seja direto.`

// Client talks to the Anthropic API. All three operations are single-turn
// messages; no conversation state is kept.
type Client struct {
	sdk   sdk.Client
	model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		sdk:   sdk.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	msg, err := c.sdk.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("anthropic: empty response")
	}
	return out, nil
}

// FormatMarkdown converts a raw scraped description into Markdown.
func (c *Client) FormatMarkdown(ctx context.Context, description string) (string, error) {
	return c.complete(ctx, markdownSystem, description, markdownMaxTokens)
}

// ClassifyLegal extracts the structured legal situation from a description.
func (c *Client) ClassifyLegal(ctx context.Context, description string) (*models.LegalClassification, error) {
	out, err := c.complete(ctx, classifySystem, description, classifyMaxTokens)
	if err != nil {
		return nil, err
	}

	// Models occasionally wrap JSON in a code fence despite instructions.
	out = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(out, "```json"), "```"))
	out = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(out, "```"), "```"))

	var cls models.LegalClassification
	if err := json.Unmarshal([]byte(out), &cls); err != nil {
		return nil, fmt.Errorf("parse classification: %w", err)
	}
	return &cls, nil
}

// Analyze produces a full report for a scrap.
func (c *Client) Analyze(ctx context.Context, s *models.Scrap) (*models.Analysis, error) {
	prompt := buildAnalysisPrompt(s)
	out, err := c.complete(ctx, analyzeSystem, prompt, analyzeMaxTokens)
	if err != nil {
		return nil, err
	}
	return &models.Analysis{
		ScrapID: s.ID,
		Model:   c.model,
		Content: out,
	}, nil
}

func buildAnalysisPrompt(s *models.Scrap) string {
	var b strings.Builder
	write := func(label string, v *string) {
		if v != nil {
			fmt.Fprintf(&b, "%s: %s\n", label, *v)
		}
	}
	writeMoney := func(label string, v *float64) {
		if v != nil {
			fmt.Fprintf(&b, "%s: R$ %.2f\n", label, *v)
		}
	}

	write("Nome", s.Name)
	write("Endereço", s.Address)
	write("Processo", s.CaseNumber)
	fmt.Fprintf(&b, "Status: %s\n", s.Status)
	writeMoney("Lance atual", s.Bid)
	writeMoney("Avaliação", s.Appraisal)
	if s.FirstAuctionDate != nil {
		fmt.Fprintf(&b, "1ª praça: %s", s.FirstAuctionDate.Format("02/01/2006 15:04"))
		if s.FirstAuctionBid != nil {
			fmt.Fprintf(&b, " (lance mínimo R$ %.2f)", *s.FirstAuctionBid)
		}
		b.WriteString("\n")
	}
	if s.SecondAuctionDate != nil {
		fmt.Fprintf(&b, "2ª praça: %s", s.SecondAuctionDate.Format("02/01/2006 15:04"))
		if s.SecondAuctionBid != nil {
			fmt.Fprintf(&b, " (lance mínimo R$ %.2f)", *s.SecondAuctionBid)
		}
		b.WriteString("\n")
	}
	if s.Description != nil {
		fmt.Fprintf(&b, "\nDescrição:\n%s\n", *s.Description)
	}
	return b.String()
}
