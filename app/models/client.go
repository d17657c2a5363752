package models

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/JeremyDillmann/task-bot-ai/app/tools"
	"github.com/JeremyDillmann/task-bot-ai/app/utils/restclient"
)

const endpoint = "/v1/chat/completions"

// resolveTemperature keeps operation selection deterministic; thinkTemperature
// is the default for free conversation.
const (
	resolveTemperature = 0.2
	ThinkTemperature   = 0.7
	maxRetries         = 3
)

var _ Interface = &LLMClient{}

// LLMClient talks to any OpenAI-compatible chat completion endpoint.
type LLMClient struct {
	restClient *restclient.RestClient
	model      string
	timeout    time.Duration
}

func NewLLMClient(baseURL, apiKey, model string, timeout time.Duration) *LLMClient {
	var headers map[string]string
	if apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMClient{
		restClient: restclient.NewRestClient(baseURL, headers),
		model:      model,
		timeout:    timeout,
	}
}

func (mc *LLMClient) Resolve(ctx context.Context, messages []Message, toolkit map[string]tools.Tool) (*Resolution, error) {
	response, err := mc.generateResponse(ctx, messages, toolkit, resolveTemperature)
	if err != nil {
		return nil, err
	}
	msg := response.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		return &Resolution{Call: &ToolCall{Name: call.Function.Name, Arguments: call.Function.Arguments}}, nil
	}
	return &Resolution{Content: msg.Content}, nil
}

func (mc *LLMClient) Think(ctx context.Context, messages []Message, temperature float64) (string, error) {
	response, err := mc.generateResponse(ctx, messages, nil, temperature)
	if err != nil {
		return "", err
	}
	return response.Choices[0].Message.Content, nil
}

func (mc *LLMClient) generateResponse(ctx context.Context, messages []Message, toolkit map[string]tools.Tool, temp float64) (*responseLLM, error) {
	payload := requestPayload{
		Model:       mc.model,
		Tools:       functionsToPayload(toolkit),
		Messages:    messages,
		Temperature: temp,
	}
	response, err := mc.sendRequestAndParse(ctx, payload)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrUnavailable)
	}
	return response, nil
}

func functionsToPayload(functions map[string]tools.Tool) (payload []functionPayload) {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		payload = append(payload, functionPayload{Type: "function", Function: functions[name]})
	}
	return payload
}

func (mc *LLMClient) sendRequestAndParse(ctx context.Context, payload requestPayload) (*responseLLM, error) {
	var err error
	var response []byte
	var status int
	var generatedResponse responseLLM

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		default:
			if err != nil {
				time.Sleep(time.Duration(math.Pow(2, float64(i))) * 100 * time.Millisecond)
			}

			callCtx, cancel := context.WithTimeout(ctx, mc.timeout)
			response, status, err = mc.restClient.Post(callCtx, endpoint, payload, nil)
			cancel()
			if err != nil || status >= 400 {
				if err == nil {
					err = fmt.Errorf("http %d: %s", status, response)
				}
				log.Printf("⚠️ LLM attempt %d failed: HTTP %d | Error: %v", i, status, err)
				continue
			}

			if err = json.Unmarshal(response, &generatedResponse); err != nil {
				log.Printf("⚠️ Error parsing LLM response: %v", err)
				continue
			}

			return &generatedResponse, nil
		}
	}

	return nil, fmt.Errorf("%w: request failed after %d retries: %v", ErrUnavailable, maxRetries, err)
}
