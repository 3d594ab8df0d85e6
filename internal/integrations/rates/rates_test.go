package rates

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<Cube>
		<Cube time="2026-08-28">
			<Cube currency="USD" rate="1.0866"/>
			<Cube currency="JPY" rate="161.52"/>
			<Cube currency="GBP" rate="0.8421"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func testClient(url string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(url, "EUR", log)
}

func TestFetchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	rates, err := testClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 3)

	usd := rates[0]
	assert.Equal(t, "EUR", usd.Base)
	assert.Equal(t, "USD", usd.Quote)
	assert.Equal(t, "1.0866", usd.Rate.String())
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), usd.Date)
}

func TestFetchRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background())
	assert.ErrorContains(t, err, "unexpected status code: 503")
}

func TestParseErrors(t *testing.T) {
	c := testClient("unused")

	t.Run("not XML", func(t *testing.T) {
		_, err := c.parse([]byte("{}"))
		assert.Error(t, err)
	})

	t.Run("missing dated cube", func(t *testing.T) {
		_, err := c.parse([]byte(`<Envelope><Cube></Cube></Envelope>`))
		assert.ErrorContains(t, err, "no dated rate data")
	})

	t.Run("dated cube with no currencies", func(t *testing.T) {
		_, err := c.parse([]byte(`<Envelope><Cube><Cube time="2026-08-28"></Cube></Cube></Envelope>`))
		assert.ErrorContains(t, err, "no currency rates")
	})

	t.Run("malformed rate value", func(t *testing.T) {
		_, err := c.parse([]byte(`<Envelope><Cube><Cube time="2026-08-28"><Cube currency="USD" rate="abc"/></Cube></Cube></Envelope>`))
		assert.ErrorContains(t, err, "failed to parse rate for USD")
	})
}
