package guest

import (
	"context"
	"time"

	"github.com/nthnn/ura/hostfuncs"
)

// Fetch asks the host to perform req. Relative URLs resolve against the
// host's API base. A deadline on ctx becomes the request timeout.
// A non-2xx status is not an error; transport failures are.
func Fetch(ctx context.Context, req hostfuncs.HTTPRequest) (*hostfuncs.HTTPResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok && req.Timeout == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		req.Timeout = int(max(remaining.Milliseconds(), 1))
	}

	var resp hostfuncs.HTTPResponse
	if err := call("http_request", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &resp, resp.Error
	}
	return &resp, nil
}

// Get is Fetch with method GET.
func Get(ctx context.Context, url string) (*hostfuncs.HTTPResponse, error) {
	return Fetch(ctx, hostfuncs.HTTPRequest{Method: "GET", URL: url})
}

// Post is Fetch with method POST and a JSON body.
func Post(ctx context.Context, url, body string) (*hostfuncs.HTTPResponse, error) {
	return Fetch(ctx, hostfuncs.HTTPRequest{Method: "POST", URL: url, Body: body})
}
