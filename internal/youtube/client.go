// Package youtube downloads audio-only streams for transcription.
package youtube

import (
	ytdl "github.com/kkdai/youtube/v2"
)

// Client wraps the YouTube download client.
type Client struct {
	client ytdl.Client
}

// NewClient creates a new Client.
func NewClient() *Client {
	return &Client{client: ytdl.Client{}}
}
