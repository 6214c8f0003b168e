package ioutil

import (
	"fmt"
	"io"
)

// ReadLimited reads at most limit bytes from r as a string, for quoting
// provider response bodies in errors and logs. A read failure yields a
// placeholder rather than an empty string.
func ReadLimited(r io.Reader, limit int64) string {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return fmt.Sprintf("<unreadable: %v>", err)
	}
	return string(body)
}
