package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("context logger", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		defaultLogger = slog.New(slog.NewTextHandler(buf, nil))
	})

	It("should fall back to the process logger on a bare context", func() {
		From(context.Background()).Info("hello")
		Expect(buf.String()).To(ContainSubstring("hello"))
	})

	It("should carry attached fields through the context", func() {
		ctx := With(context.Background(), "staff_id", 42)
		From(ctx).Info("scoped")
		Expect(buf.String()).To(ContainSubstring("staff_id=42"))
	})

	It("should tag the context logger with the trace id", func() {
		ctx := WithTrace(context.Background(), "abc-123")
		From(ctx).Info("traced")
		Expect(buf.String()).To(ContainSubstring("trace_id=abc-123"))
	})

	It("should accumulate fields across nested calls", func() {
		ctx := With(context.Background(), "first", 1)
		ctx = With(ctx, "second", 2)
		From(ctx).Info("nested")
		Expect(buf.String()).To(ContainSubstring("first=1"))
		Expect(buf.String()).To(ContainSubstring("second=2"))
	})
})
