package llmclient

import "context"

// Fake is a scriptable Client for tests in downstream packages: it returns
// Responses in order, or Err if set, without making any network call.
type Fake struct {
	Responses []string
	Err       error
	Calls     int
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Generate(ctx context.Context, system, user string, opts Options) (string, error) {
	i := f.Calls
	f.Calls++
	if f.Err != nil {
		return "", f.Err
	}
	if i >= len(f.Responses) {
		if len(f.Responses) == 0 {
			return "", nil
		}
		return f.Responses[len(f.Responses)-1], nil
	}
	return f.Responses[i], nil
}
