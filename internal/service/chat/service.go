// Package chat answers health questions through a generative model, using
// the caller's own records as context.
package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/internal/model"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/metrics"
)

// Generator produces a model reply for a prepared request.
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

type Options struct {
	APIKey     string
	Production bool
}

type Service struct {
	assembler  *Assembler
	generator  Generator
	keyValid   bool
	production bool
	metrics    *metrics.Metrics
}

func NewService(assembler *Assembler, generator Generator, opts Options, m *metrics.Metrics) *Service {
	return &Service{
		assembler:  assembler,
		generator:  generator,
		keyValid:   KeyValid(opts.APIKey),
		production: opts.Production,
		metrics:    m,
	}
}

// Chat handles one turn: greeting, then credential check, then context
// assembly and the model call.
func (s *Service) Chat(ctx context.Context, userID int64, req *model.ChatRequest) (*model.ChatResponse, error) {
	if IsGreeting(req.UserMessage) {
		s.count("greeting")
		return &model.ChatResponse{Reply: GreetingReply}, nil
	}

	if !s.keyValid {
		if s.production {
			log.Ctx(ctx).Error().Msg("AI credential is missing or invalid")
			s.count("config_error")
			return nil, chatError(apperrors.NewUnavailable(MsgConfig, nil))
		}
		log.Ctx(ctx).Warn().Msg("AI credential is missing or invalid, using mock reply")
		cc := s.assembler.Assemble(ctx, userID)
		s.count("mock")
		return &model.ChatResponse{
			Reply:   MockReply(req.UserMessage, cc),
			Warning: MockWarning,
		}, nil
	}

	cc := s.assembler.Assemble(ctx, userID)
	block := ContextBlock(cc)
	log.Ctx(ctx).Debug().Int64("user_id", userID).Int("context_bytes", len(block)).Msg("chat context assembled")

	genReq, err := BuildRequest(Instruction(block), req.History(), req.UserMessage)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		var chatErr *Error
		if errors.As(err, &chatErr) && chatErr.BlockReason != "" {
			s.count("blocked")
		} else {
			s.count("upstream_error")
		}
		return nil, err
	}
	s.count("upstream_ok")
	return &model.ChatResponse{Reply: reply}, nil
}

// Debug returns the context a chat turn would use.
func (s *Service) Debug(ctx context.Context, userID int64) *model.ChatDebug {
	cc := s.assembler.Assemble(ctx, userID)
	dbg := &model.ChatDebug{
		UserID:               userID,
		ChatContext:          *cc,
		GeneratedUserContext: ContextBlock(cc),
	}
	if cc.Profile != nil {
		dbg.CalculatedAge = cc.Profile.Age
	}
	return dbg
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.AIRequests.WithLabelValues(outcome).Inc()
	}
}
