// Package simulate plays back a scripted six-step pipeline run. Nothing is
// executed: each step reveals canned log lines and then succeeds or fails
// at random.
package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

type StepStatus string

const (
	StepIdle    StepStatus = "idle"
	StepRunning StepStatus = "running"
	StepSuccess StepStatus = "success"
	StepFailure StepStatus = "failure"
)

const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

const (
	DefaultStartDelay = time.Second
	DefaultLineDelay  = 500 * time.Millisecond
)

// failureRate is the chance a step other than "test" fails.
const failureRate = 0.1

type Step struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   StepStatus `json:"status"`
	Duration int        `json:"durationSeconds,omitempty"`
	Log      []string   `json:"log"`
}

type Run struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	FailedStep string    `json:"failedStep,omitempty"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished,omitempty"`
	Steps      []Step    `json:"steps"`
}

// Dice is the source of randomness for outcomes and durations.
// *rand.Rand satisfies it.
type Dice interface {
	Float64() float64
	IntN(n int) int
}

// Observer is notified as the run progresses. Steps passed to it are copies.
type Observer interface {
	StepStarted(index, total int, step Step)
	StepLog(index int, line string)
	StepFinished(index int, step Step)
}

type script struct {
	id, name string
	log      []string
}

var scripts = []script{
	{"checkout", "Checkout Code", []string{
		"Cloning repository...",
		"Checking out branch 'main'",
		"Successfully checked out repository",
	}},
	{"install", "Install Dependencies", []string{
		"Installing dependencies using npm...",
		"added 1250 packages in 12s",
		"Dependencies successfully installed",
	}},
	{"build", "Build Application", []string{
		"Building application...",
		"Compiling JavaScript...",
		"Bundling assets...",
		"Application built successfully",
	}},
	{"test", "Run Tests", []string{
		"Running unit tests...",
		"PASS src/utils/format.test.js",
		"PASS src/hooks/useApi.test.js",
		"PASS src/components/Button.test.js",
		"Test Suites: 12 passed, 12 total",
		"Tests: 48 passed, 48 total",
	}},
	{"docker", "Build Docker Image", []string{
		"Building Docker image...",
		"Step 1/8 : FROM node:16-alpine",
		"Step 2/8 : WORKDIR /app",
		"Step 3/8 : COPY package*.json ./",
		"Step 4/8 : RUN npm ci",
		"Step 5/8 : COPY . .",
		"Step 6/8 : RUN npm run build",
		"Step 7/8 : EXPOSE 3000",
		`Step 8/8 : CMD ["npm", "start"]`,
		"Successfully built image my-app:latest",
	}},
	{"deploy", "Deploy to Cloud", []string{
		"Deploying to cloud...",
		"Pushing Docker image to registry...",
		"Creating deployment...",
		"Waiting for deployment to be ready...",
		"Deployment completed successfully",
	}},
}

// Steps returns the six steps in their idle state.
func Steps() []Step {
	out := make([]Step, len(scripts))
	for i, s := range scripts {
		out[i] = Step{ID: s.id, Name: s.name, Status: StepIdle, Log: []string{}}
	}
	return out
}

// Simulator drives a run. The zero value is usable and runs with no delays,
// package-level randomness and no observer.
type Simulator struct {
	Dice       Dice
	Observer   Observer
	StartDelay time.Duration
	LineDelay  time.Duration
	Now        func() time.Time
	NewID      func() string
}

// New returns a Simulator with the default pacing.
func New(dice Dice, obs Observer) *Simulator {
	return &Simulator{
		Dice:       dice,
		Observer:   obs,
		StartDelay: DefaultStartDelay,
		LineDelay:  DefaultLineDelay,
	}
}

// Seeded returns a deterministic Dice for the given seed.
func Seeded(seed uint64) Dice {
	return rand.New(rand.NewPCG(seed, seed))
}

type globalDice struct{}

func (globalDice) Float64() float64 { return rand.Float64() }
func (globalDice) IntN(n int) int   { return rand.IntN(n) }

type nopObserver struct{}

func (nopObserver) StepStarted(int, int, Step) {}
func (nopObserver) StepLog(int, string)        {}
func (nopObserver) StepFinished(int, Step)     {}

// Run plays every step in order and stops at the first failure. The
// returned Run is always non-nil; the error is non-nil when a step failed
// or ctx was cancelled.
func (s *Simulator) Run(ctx context.Context) (*Run, error) {
	dice := s.Dice
	if dice == nil {
		dice = globalDice{}
	}
	obs := s.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	run := &Run{
		ID:      newID(),
		Status:  StatusRunning,
		Started: now(),
		Steps:   Steps(),
	}
	finish := func(status string, err error) (*Run, error) {
		run.Status = status
		run.Finished = now()
		return run, err
	}

	total := len(run.Steps)
	for i := range run.Steps {
		step := &run.Steps[i]
		step.Status = StepRunning
		obs.StepStarted(i, total, cloneStep(*step))

		if err := wait(ctx, s.StartDelay); err != nil {
			step.Status = StepIdle
			return finish(StatusInterrupted, err)
		}
		for _, line := range scripts[i].log {
			step.Log = append(step.Log, line)
			obs.StepLog(i, line)
			if err := wait(ctx, s.LineDelay); err != nil {
				step.Status = StepIdle
				return finish(StatusInterrupted, err)
			}
		}

		ok := dice.Float64() > failureRate || step.ID == "test"
		step.Duration = dice.IntN(20) + 5
		if ok {
			step.Status = StepSuccess
		} else {
			step.Status = StepFailure
		}
		obs.StepFinished(i, cloneStep(*step))

		if !ok {
			run.FailedStep = step.ID
			return finish(StatusFailed, fmt.Errorf("pipeline failed at step: %s", step.Name))
		}
	}
	return finish(StatusCompleted, nil)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func cloneStep(s Step) Step {
	s.Log = append([]string(nil), s.Log...)
	return s
}
