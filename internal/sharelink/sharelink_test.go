package sharelink

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	b := NewBuilder("https://salamilink.app")

	t.Run("pay url", func(t *testing.T) {
		links := b.For("abc123XY", "Rafi")
		assert.Equal(t, "https://salamilink.app/pay/abc123XY", links.PayURL)
	})

	t.Run("whatsapp message includes sender and url", func(t *testing.T) {
		links := b.For("abc123XY", "Rafi")
		require.True(t, strings.HasPrefix(links.WhatsApp, "https://wa.me/?text="))

		text, err := url.QueryUnescape(strings.TrimPrefix(links.WhatsApp, "https://wa.me/?text="))
		require.NoError(t, err)
		assert.Equal(t, "Assalamu Alaikum! Salami invoice from Rafi: https://salamilink.app/pay/abc123XY", text)
	})

	t.Run("empty sender drops the attribution", func(t *testing.T) {
		links := b.For("abc123XY", "")
		text, err := url.QueryUnescape(strings.TrimPrefix(links.WhatsApp, "https://wa.me/?text="))
		require.NoError(t, err)
		assert.Equal(t, "Assalamu Alaikum! Salami invoice: https://salamilink.app/pay/abc123XY", text)
	})

	t.Run("messenger deep link", func(t *testing.T) {
		links := b.For("abc123XY", "")
		assert.Equal(t, "fb-messenger://share/?link="+url.QueryEscape("https://salamilink.app/pay/abc123XY"), links.Messenger)
	})
}

func TestNewBuilder_TrailingSlash(t *testing.T) {
	b := NewBuilder("https://salamilink.app/")
	links := b.For("abc123XY", "")
	assert.Equal(t, "https://salamilink.app/pay/abc123XY", links.PayURL)
}
