package requestdata

import (
	"context"
)

var requestDataKey = struct{}{}

// RequestData carries the authenticated caller identity through the service
// call chain. UserID is the external identity-provider subject.
type RequestData struct {
	UserID      string
	IsSuperuser bool
	RequestID   string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
