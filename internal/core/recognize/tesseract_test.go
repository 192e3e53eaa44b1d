package recognize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stallingClient stands in for the non-interruptible C call: it ignores the
// context entirely and returns its text after a fixed delay.
type stallingClient struct {
	delay  time.Duration
	text   string
	closed int
}

func (c *stallingClient) SetImageFromBytes(data []byte) error { return nil }

func (c *stallingClient) Text() (string, error) {
	time.Sleep(c.delay)
	return c.text, nil
}

func (c *stallingClient) Close() error {
	c.closed++
	return nil
}

func TestTesseractHandleReturnsTrimmedText(t *testing.T) {
	h := &tesseractHandle{client: &stallingClient{text: "  scanned text \n"}}

	out, err := h.Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "scanned text", out)
}

func TestTesseractHandleReportsExpiredDeadline(t *testing.T) {
	h := &tesseractHandle{client: &stallingClient{delay: 50 * time.Millisecond, text: "late page"}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := h.Recognize(ctx, []byte("img"))
	assert.ErrorIs(t, err, context.DeadlineExceeded,
		"text arriving after the deadline must surface as a failure")
}

func TestTesseractHandleRejectsCancelledContext(t *testing.T) {
	h := &tesseractHandle{client: &stallingClient{text: "never"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Recognize(ctx, []byte("img"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTesseractHandleClosesClientOnce(t *testing.T) {
	client := &stallingClient{}
	h := &tesseractHandle{client: client}

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, client.closed)
}
