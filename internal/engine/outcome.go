package engine

import (
	"fmt"
	"time"

	"github.com/specialistvlad/parsegrid/internal/job"
)

// Kind classifies the outcome of one transformation.
type Kind int

const (
	KindSucceeded Kind = iota
	KindResolution
	KindLoad
	KindContract
	KindInvocation
	KindParserRuntime
)

var kindNames = map[Kind]string{
	KindSucceeded:     "Succeeded",
	KindResolution:    "ResolutionError",
	KindLoad:          "LoadError",
	KindContract:      "ContractError",
	KindInvocation:    "InvocationError",
	KindParserRuntime: "ParserRuntimeError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText lets reports render kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the fate of one transformation.
type Outcome struct {
	Kind     Kind          `json:"kind"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	// Err is the underlying error, kept for errors.Is and errors.As.
	Err error `json:"-"`
}

// Succeeded reports whether the transformation completed without error.
func (o Outcome) Succeeded() bool {
	return o.Kind == KindSucceeded
}

func succeeded() Outcome {
	return Outcome{Kind: KindSucceeded}
}

func failed(kind Kind, err error) Outcome {
	return Outcome{Kind: kind, Message: err.Error(), Err: err}
}

func (o Outcome) String() string {
	if o.Succeeded() {
		return o.Kind.String()
	}
	return fmt.Sprintf("Failed(%s, %s)", o.Kind, o.Message)
}

// Result pairs a transformation with its outcome.
type Result struct {
	Descriptor *job.Descriptor `json:"transformation"`
	Outcome    Outcome         `json:"outcome"`
}

// Report is the job-level result.
type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Results   []Result      `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// OK reports whether every transformation succeeded.
func (r *Report) OK() bool {
	return r.Failed == 0
}

func (r *Report) tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, res := range r.Results {
		if res.Outcome.Succeeded() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
}
