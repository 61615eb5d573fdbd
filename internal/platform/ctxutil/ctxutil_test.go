package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRequestDataRoundTrip(t *testing.T) {
	uid := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{UserID: uid, TokenString: "tok"})
	if got := UserID(ctx); got != uid {
		t.Fatalf("UserID=%s want %s", got, uid)
	}
	if UserID(context.Background()) != uuid.Nil {
		t.Fatalf("expected nil user id on bare context")
	}
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t1", RequestID: "r1"})
	if td := GetTraceData(ctx); td == nil || td.TraceID != "t1" {
		t.Fatalf("trace data lost: %+v", td)
	}
	if RequestID(ctx) != "r1" || RequestID(context.Background()) != "" {
		t.Fatalf("RequestID mismatch")
	}
	if GetRequestData(ctx).TokenString != "tok" {
		t.Fatalf("request data lost after trace attach")
	}
}
