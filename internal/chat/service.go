// Package chat implements the conversational workflows: free-form chat with
// per-user history and function-guided chat grounded in past dreams.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/completion"
	"github.com/lucidia/lucid-server/internal/dreams"
	"github.com/lucidia/lucid-server/internal/model"
)

// defaultMessage opens the conversation when the user sends nothing.
const defaultMessage = "Let's talk about the fascinating world of lucid dreaming."

const sceneMessage = `Let's delve deeper into the realm of dreams. Draw upon the vast reservoirs of knowledge about dreams from different perspectives - scientific, psychological, philosophical, and mystical. Interpret the dream imagery, unravel its symbolism, and explore its relevance to the dreamer's waking life and personal growth.

In the context of lucid dreaming, discuss techniques for inducing lucidity, the benefits and potential challenges of lucid dreaming, and its implications for understanding consciousness and the human mind.

Weave this understanding into a comprehensive response that provides valuable insights and guidance to the dreamer, all within the constraints of 500 characters.`

// groundingLimit caps how many retrieved dreams are woven into the context.
const groundingLimit = 3

// Service runs the chat workflows.
type Service struct {
	provider completion.Provider
	journal  *dreams.Service
	sessions *SessionStore
	logger   zerolog.Logger
}

// NewService constructs a chat service.
func NewService(provider completion.Provider, journal *dreams.Service, sessions *SessionStore, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		journal:  journal,
		sessions: sessions,
		logger:   logger.With().Str("component", "chat").Logger(),
	}
}

// Chat continues the user's free-form conversation and returns the reply.
// The exchange is appended to the session history.
func (s *Service) Chat(ctx context.Context, email, message string) (string, error) {
	if message == "" {
		message = defaultMessage
	}
	messages := s.sessions.History(email)
	messages = append(messages,
		model.ChatMessage{Role: model.RoleSystem, Content: sceneMessage},
		model.ChatMessage{Role: model.RoleUser, Content: message},
	)

	reply, err := s.provider.ChatCompletion(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	s.sessions.Append(email,
		model.ChatMessage{Role: model.RoleSystem, Content: sceneMessage},
		model.ChatMessage{Role: model.RoleUser, Content: message},
		model.ChatMessage{Role: model.RoleAssistant, Content: reply},
	)
	return reply, nil
}

// SearchChat grounds a guided workflow in the user's past dreams. The named
// workflow is forced as a function call; an unknown name runs a random one.
func (s *Service) SearchChat(ctx context.Context, email, functionName, prompt string) (*model.SearchChatResult, error) {
	results, err := s.journal.Search(ctx, email, prompt)
	if err != nil {
		return nil, fmt.Errorf("search chat: %w", err)
	}

	messages := s.sessions.History(email)
	if len(results) > 0 {
		grounded := results
		if len(grounded) > groundingLimit {
			grounded = grounded[:groundingLimit]
		}
		for _, d := range grounded {
			analysis := d.Analysis
			if analysis == "" {
				analysis = "Analysis not available"
			}
			messages = append(messages, model.ChatMessage{
				Role: model.RoleSystem,
				Content: fmt.Sprintf("A reverberation from your past dream, titled '%s', dated %s, has surfaced. The dream whispers: '%s'. It has been psychoanalyzed as: '%s'.",
					d.Title, d.Date, d.Entry, analysis),
			})
		}
		messages = append(messages, model.ChatMessage{
			Role:    model.RoleSystem,
			Content: fmt.Sprintf("Your past dreams seem to resonate with the theme of '%s'. Would you like to explore this theme further?", results[0].Title),
		})
		s.sessions.PushTopic(email, results[0].Title)
	}

	messages = append(messages, model.ChatMessage{
		Role:    model.RoleSystem,
		Content: "As we tread this kaleidoscopic mindscape, how do you feel about the insights unraveled so far?",
	})
	if topic, ok := s.sessions.CurrentTopic(email); ok {
		messages = append(messages, model.ChatMessage{
			Role:    model.RoleSystem,
			Content: fmt.Sprintf("Would you like to switch the focus to discussing '%s' in your dreams?", topic),
		})
	}
	topic := "None"
	if t, ok := s.sessions.CurrentTopic(email); ok {
		topic = t
	}
	messages = append(messages, model.ChatMessage{
		Role: model.RoleSystem,
		Content: fmt.Sprintf("To summarize our cognitive journey: We've sifted through %d past dreams, pondered upon themes like '%s', and dabbled in meta-cognitive reflections. What's our next voyage?",
			len(results), topic),
	})
	messages = append(messages, model.ChatMessage{Role: model.RoleUser, Content: prompt})

	fn := resolveFunction(functionName)
	if fn.Name != functionName {
		s.logger.Info().Str("requested", functionName).Str("selected", fn.Name).Msg("unknown workflow, selected randomly")
	}
	args, err := s.provider.FunctionCompletion(ctx, messages, fn)
	if err != nil {
		return nil, fmt.Errorf("search chat: %w", err)
	}
	return &model.SearchChatResult{
		Function:      fn.Name,
		Arguments:     args,
		SearchResults: results,
	}, nil
}
