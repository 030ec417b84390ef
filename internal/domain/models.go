package domain

import (
	"fmt"
	"time"
)

// Kind is the terminal state of one probe.
type Kind int

const (
	KindSuccess Kind = iota
	KindTimeout
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTimeout:
		return "timeout"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a single (URL, attempt) pair.
//
// StatusCode and Elapsed are only meaningful for KindSuccess; Cause only for
// KindError. Repeat and Bunch are zero-based and set by the dispatcher.
type Outcome struct {
	URL        string        `json:"url"`
	Kind       Kind          `json:"kind"`
	StatusCode int           `json:"status_code,omitempty"`
	Elapsed    time.Duration `json:"elapsed,omitempty"`
	Cause      error         `json:"-"`
	Repeat     int           `json:"repeat"`
	Bunch      int           `json:"bunch"`
}

func Success(url string, status int, elapsed time.Duration) Outcome {
	return Outcome{URL: url, Kind: KindSuccess, StatusCode: status, Elapsed: elapsed}
}

func Timeout(url string) Outcome {
	return Outcome{URL: url, Kind: KindTimeout}
}

func Failure(url string, cause error) Outcome {
	return Outcome{URL: url, Kind: KindError, Cause: cause}
}

// Line renders the outcome the way it is printed while a sweep runs.
func (o Outcome) Line() string {
	switch o.Kind {
	case KindSuccess:
		return fmt.Sprintf("  %s %d (%.2fs)", o.URL, o.StatusCode, o.Elapsed.Seconds())
	case KindTimeout:
		return fmt.Sprintf("  %s TIMEOUT", o.URL)
	default:
		return fmt.Sprintf("  %s ERROR: %v", o.URL, o.Cause)
	}
}
