// Package gemini подключает Gemini как внешнего эксперта: оценку ремонта
// и предварительный поиск дефекта на паре снимков.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

const DefaultModel = "gemini-1.5-flash"

var ErrNoResponse = errors.New("no response from Gemini API")

// generateFunc отправляет части запроса и возвращает текст ответа.
type generateFunc func(ctx context.Context, parts ...genai.Part) (string, error)

// Client адаптер Gemini для портов SemanticJudge и RegionProposer.
type Client struct {
	client   *genai.Client
	generate generateFunc
	maxSide  int
}

// NewClient создаёт клиента. maxSide ограничивает длинную сторону отправляемых снимков.
func NewClient(ctx context.Context, apiKey, modelName string, maxSide int) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(250)

	c := newClient(func(ctx context.Context, parts ...genai.Part) (string, error) {
		res, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			return "", err
		}
		return responseText(res)
	}, maxSide)
	c.client = client
	return c, nil
}

func newClient(generate generateFunc, maxSide int) *Client {
	return &Client{generate: generate, maxSide: maxSide}
}

// Judge просит модель оценить, отремонтирован ли фрагмент.
func (c *Client) Judge(ctx context.Context, before, after entity.Image, indicators entity.IndicatorSet) (string, error) {
	beforeJPEG, err := c.encode(before)
	if err != nil {
		return "", err
	}
	afterJPEG, err := c.encode(after)
	if err != nil {
		return "", err
	}

	return c.generate(ctx,
		genai.Text(judgePrompt(indicators)),
		genai.ImageData("jpeg", beforeJPEG),
		genai.Text("AFTER image (check if repaired):"),
		genai.ImageData("jpeg", afterJPEG),
	)
}

// Propose просит модель найти главный дефект на снимке "до".
func (c *Client) Propose(ctx context.Context, before, after entity.Image) ([]entity.Proposal, error) {
	beforeJPEG, err := c.encode(before)
	if err != nil {
		return nil, err
	}
	afterJPEG, err := c.encode(after)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx,
		genai.Text(proposePrompt),
		genai.Text("BEFORE image:"),
		genai.ImageData("jpeg", beforeJPEG),
		genai.Text("AFTER image:"),
		genai.ImageData("jpeg", afterJPEG),
	)
	if err != nil {
		return nil, err
	}

	return parseProposals(text), nil
}

// Close закрывает соединение с API.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) encode(img entity.Image) ([]byte, error) {
	if img.Empty() {
		return nil, entity.ErrEmptyImage
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img.FitWithin(c.maxSide).RGBA(), &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", ErrNoResponse
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("unexpected response format from Gemini API")
	}
	return sb.String(), nil
}

var (
	_ port.SemanticJudge  = (*Client)(nil)
	_ port.RegionProposer = (*Client)(nil)
)
