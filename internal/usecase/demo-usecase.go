package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/prompt"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
	"github.com/sourcegraph/conc/iter"
)

const (
	StepBasic       = "basic"
	StepPersonality = "personality"
	StepMemory      = "memory"
	StepParameters  = "parameters"

	sweepMaxOutputTokens = 100
)

var DemoSteps = []string{StepBasic, StepPersonality, StepMemory, StepParameters}

var (
	personalityQuestions = []string{
		"What is WCC?",
		"How can I join?",
		"I'm new to coding, can WCC help me?",
	}
	memoryMessages = []string{
		"Hi, I'm Sarah and I'm new to programming",
		"What programming language should I start with?",
		"Do you remember my name?",
	}
)

type Temperature struct {
	Value       float32
	Description string
}

var SweepTemperatures = []Temperature{
	{0.0, "Deterministic - Same answer every time"},
	{0.7, "Balanced - Recommended for most use cases"},
	{1.5, "Very Creative - Different each time"},
}

type DemoUsecaseDeps struct {
	Endpoint session.Endpoint
	Out      io.Writer
	Logger   zerolog.Logger
}

// DemoUsecase walks through the workshop steps, each building on the one
// before, and prints what happens.
type DemoUsecase struct {
	DemoUsecaseDeps
	modelID string
}

func NewDemoUsecase(modelID string, deps DemoUsecaseDeps) *DemoUsecase {
	return &DemoUsecase{DemoUsecaseDeps: deps, modelID: modelID}
}

func (d *DemoUsecase) Run(ctx context.Context, step string) error {
	switch step {
	case StepBasic:
		return d.Basic(ctx)
	case StepPersonality:
		return d.Personality(ctx)
	case StepMemory:
		return d.Memory(ctx)
	case StepParameters:
		return d.Parameters(ctx)
	default:
		return fmt.Errorf("unknown step %q, expected one of %s", step, strings.Join(DemoSteps, ", "))
	}
}

// Basic sends a single prompt with no instruction or history.
func (d *DemoUsecase) Basic(ctx context.Context) error {
	d.header("STEP 1: Basic API Call")
	question := "What is Women Coding Community (WCC)?"
	d.printf("\n📝 Sending prompt: '%s'\n", question)
	reply := d.ask(ctx, session.Config{ModelID: d.modelID}, question)
	d.printf("\n✅ Response:\n%s\n", reply)
	return nil
}

// Personality asks the same questions under the WCC instruction.
func (d *DemoUsecase) Personality(ctx context.Context) error {
	d.header("STEP 2: Adding Personality with System Prompts")
	cfg := session.Config{ModelID: d.modelID, SystemInstruction: prompt.WCCAssistant}
	d.printf("\n📝 Testing with WCC-specific system prompt:\n\n")
	for _, question := range personalityQuestions {
		d.printf("Q: %s\n", question)
		d.printf("A: %s\n\n", d.ask(ctx, cfg, question))
		d.printf("%s\n", strings.Repeat("-", 40))
	}
	return nil
}

// Memory holds one session across three messages so later replies can
// refer to earlier ones.
func (d *DemoUsecase) Memory(ctx context.Context) error {
	d.header("STEP 3: Adding Conversation Memory")
	s, err := session.New(d.Endpoint, session.Config{
		ModelID:           d.modelID,
		SystemInstruction: prompt.WCCAssistant,
	}, session.WithLogger(d.Logger))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	d.printf("\n💬 Testing conversation memory:\n\n")
	for _, msg := range memoryMessages {
		d.printf("You: %s\n", msg)
		reply, err := s.Send(ctx, msg)
		if err != nil {
			reply = session.DisplayText(err)
		}
		d.printf("Bot: %s\n\n", reply)
	}
	return nil
}

// Parameters sends one question at several temperatures concurrently and
// prints the replies in sweep order.
func (d *DemoUsecase) Parameters(ctx context.Context) error {
	d.header("STEP 4: Understanding Model Parameters")
	question := "Write a creative welcome message for new WCC members"
	d.printf("\n📝 Question: %s\n\n", question)
	d.printf("🌡️ TEMPERATURE EXAMPLES (Creativity):\n\n")

	replies := iter.Map(SweepTemperatures, func(temp *Temperature) string {
		return d.ask(ctx, session.Config{
			ModelID: d.modelID,
			Options: model.GenerationOptions{
				Temperature:     model.Float32(temp.Value),
				MaxOutputTokens: model.Int32(sweepMaxOutputTokens),
			},
		}, question)
	})
	for i, temp := range SweepTemperatures {
		d.printf("Temperature: %.1f (%s)\n", temp.Value, temp.Description)
		d.printf("%s\n", strings.Repeat("-", 40))
		d.printf("Response: %s\n\n", replies[i])
	}
	return nil
}

// ask runs a one-off exchange and renders failures as error text.
func (d *DemoUsecase) ask(ctx context.Context, cfg session.Config, question string) string {
	s, err := session.New(d.Endpoint, cfg, session.WithLogger(d.Logger))
	if err != nil {
		return session.DisplayText(err)
	}
	reply, err := s.Send(ctx, question)
	if err != nil {
		return session.DisplayText(err)
	}
	return reply
}

func (d *DemoUsecase) header(title string) {
	line := strings.Repeat("=", 60)
	d.printf("\n%s\n%s\n%s\n", line, title, line)
}

func (d *DemoUsecase) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(d.Out, format, a...)
}
