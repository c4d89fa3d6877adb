package ussd

import (
	"context"
	"fmt"
)

// replay feeds chained input ("1*2*1234") one segment at a time, each
// against the session the previous segment left in the store. It stops at
// the first terminating reply.
func (e *Engine) replay(ctx context.Context, sessionID, phone string, segments []string) (Response, error) {
	var resp Response
	for i, segment := range segments {
		r, err := e.dispatch(ctx, sessionID, phone, segment)
		if err != nil {
			return Response{}, fmt.Errorf("failed to replay segment %d: %w", i+1, err)
		}

		resp = r
		if !resp.Continue {
			break
		}
	}

	return resp, nil
}
