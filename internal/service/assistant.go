package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"automind-api/internal/assistant"
	"automind-api/pkg/apierror"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

const (
	// AssistantUnavailableMessage is reported when no assistant is configured.
	AssistantUnavailableMessage = "Chatbot service is currently unavailable. Please set the AK environment variable."

	// AssistantFailureMessage is reported when the assistant call fails.
	AssistantFailureMessage = "Sorry, I encountered an error. Please try again later."

	// MaxChatMessageLength bounds a single user question.
	MaxChatMessageLength = 4000
)

const assistantFraming = `You are an AI assistant for Auto_Mind, a car price prediction platform.
You help users with car-related questions, pricing information, vehicle specifications,
buying and selling advice, car maintenance tips, and general automotive knowledge.

User's question: %s

Please provide a helpful, accurate, and detailed response. If the question is about car pricing,
you can mention that Auto_Mind provides AI-powered price predictions. Keep your response
conversational and informative.`

// AssistantService frames user questions for the car domain and renders the
// assistant's markdown reply as HTML.
type AssistantService struct {
	assistant assistant.Assistant
	markdown  goldmark.Markdown
	log       *zap.Logger
}

// NewAssistantService creates a new assistant service. A nil assistant makes
// every call report the unavailable message.
func NewAssistantService(a assistant.Assistant, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		assistant: a,
		markdown:  goldmark.New(),
		log:       logger.Named("assistant"),
	}
}

// Prompt returns the framed prompt sent for message.
func Prompt(message string) string {
	return strings.Replace(assistantFraming, "%s", message, 1)
}

// Chat answers message and returns the reply as HTML.
func (s *AssistantService) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apierror.ValidationError("Please provide a message.",
			apierror.FieldError{Field: "message", Message: "is required"})
	}
	if len(message) > MaxChatMessageLength {
		return "", apierror.ValidationError("Message is too long",
			apierror.FieldError{Field: "message", Message: "is too long"})
	}

	if s.assistant == nil {
		return "", apierror.CollaboratorUnavailable(AssistantUnavailableMessage)
	}

	reply, err := s.assistant.Generate(ctx, Prompt(message))
	if errors.Is(err, assistant.ErrNotConfigured) {
		return "", apierror.CollaboratorUnavailable(AssistantUnavailableMessage)
	}
	if err != nil {
		s.log.Warn("assistant call failed", zap.Error(err))
		return "", apierror.CollaboratorUnavailable(AssistantFailureMessage)
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(reply), &buf); err != nil {
		s.log.Warn("failed to render assistant reply", zap.Error(err))
		return "", apierror.CollaboratorUnavailable(AssistantFailureMessage)
	}
	return buf.String(), nil
}
