package testing

import (
	"strings"
	"sync"
)

// NoticeCapture collects PostgreSQL NOTICE messages.
// Thread-safe for concurrent use.
type NoticeCapture struct {
	raw []string
	mu  sync.Mutex
}

// NewNoticeCapture creates a new NoticeCapture instance.
func NewNoticeCapture() *NoticeCapture {
	return &NoticeCapture{}
}

// Handler returns a function suitable for db.NewConnector.
func (c *NoticeCapture) Handler() func(message string) {
	return func(message string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.raw = append(c.raw, message)
	}
}

// Messages returns a copy of every captured message in arrival order.
func (c *NoticeCapture) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.raw...)
}

// Contains reports whether any captured message contains substr.
func (c *NoticeCapture) Contains(substr string) bool {
	for _, m := range c.Messages() {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Reset discards captured messages.
func (c *NoticeCapture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = nil
}
