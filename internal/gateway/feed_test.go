//go:build !integration

package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeed(t *testing.T) {
	feed := NewFeed()

	first, unsubscribeFirst := feed.Subscribe()
	second, unsubscribeSecond := feed.Subscribe()
	require.Equal(t, 2, feed.Subscribers())

	feed.Publish([]byte("one"))
	require.Equal(t, "one", string(<-first))
	require.Equal(t, "one", string(<-second))

	unsubscribeSecond()
	unsubscribeSecond()
	require.Equal(t, 1, feed.Subscribers())

	_, open := <-second
	require.False(t, open)

	// a full subscriber drops messages
	for i := 0; i < feedBuffer+5; i++ {
		feed.Publish([]byte("x"))
	}

	require.Len(t, first, feedBuffer)

	unsubscribeFirst()
	require.Equal(t, 0, feed.Subscribers())
}
