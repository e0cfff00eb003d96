// Package gravatar derives avatar URLs from email addresses.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

const baseURL = "//www.gravatar.com/avatar/"

type Options struct {
	Size    int
	Rating  string
	Default string
}

// DefaultOptions matches the avatar shown for new accounts.
var DefaultOptions = Options{Size: 200, Rating: "pg", Default: "mm"}

func URL(email string, opts Options) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	query := url.Values{}
	if opts.Size > 0 {
		query.Set("s", strconv.Itoa(opts.Size))
	}
	if opts.Rating != "" {
		query.Set("r", opts.Rating)
	}
	if opts.Default != "" {
		query.Set("d", opts.Default)
	}

	u := baseURL + hex.EncodeToString(sum[:])
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
