package ari

import (
	"fmt"
	"net"
	"strconv"

	"github.com/CyCoreSystems/ari"
	"github.com/CyCoreSystems/ari/client/native"
	"github.com/pkg/errors"
)

type Options struct {
	Host        string
	Port        int
	User        string
	Password    string
	Original    string
	Application string
	Secure      bool
}

// Client hangs up channels through the Asterisk REST interface.
type Client struct {
	ari ari.Client
}

func New(o Options) (*Client, error) {
	httpScheme, wsScheme := "http", "ws"
	if o.Secure {
		httpScheme, wsScheme = "https", "wss"
	}

	host := net.JoinHostPort(o.Host, strconv.Itoa(o.Port))

	client, err := native.Connect(&native.Options{
		Application:     o.Application,
		Username:        o.User,
		Password:        o.Password,
		URL:             fmt.Sprintf("%s://%s/ari", httpScheme, host),
		WebsocketURL:    fmt.Sprintf("%s://%s/ari/events", wsScheme, host),
		WebsocketOrigin: o.Original,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connect ari %s", host)
	}

	return &Client{ari: client}, nil
}

// NewWithClient wraps an already connected ari.Client.
func NewWithClient(client ari.Client) *Client {
	return &Client{ari: client}
}

// Hangup hangs up the channel with the given unique id.
func (c *Client) Hangup(uniqueID string) error {
	channel := c.ari.Channel().Get(&ari.Key{
		Kind: ari.ChannelKey,
		ID:   uniqueID,
	})

	return errors.Wrapf(channel.Hangup(), "hangup channel %s", uniqueID)
}

func (c *Client) Close() {
	c.ari.Close()
}
