package marketdata

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"
)

type fakeKiteClient struct {
	accessToken string
	instruments kiteconnect.Instruments
	candles     []kiteconnect.HistoricalData
	histErr     error

	gotToken    int
	gotInterval string
	gotFrom     time.Time
	gotTo       time.Time
}

func (f *fakeKiteClient) SetAccessToken(token string) { f.accessToken = token }

func (f *fakeKiteClient) GetInstrumentsByExchange(string) (kiteconnect.Instruments, error) {
	return f.instruments, nil
}

func (f *fakeKiteClient) GetHistoricalData(token int, interval string, from, to time.Time, _ bool, _ bool) ([]kiteconnect.HistoricalData, error) {
	f.gotToken, f.gotInterval, f.gotFrom, f.gotTo = token, interval, from, to
	return f.candles, f.histErr
}

func newTestKite(fake *fakeKiteClient, apiKey, accessToken string) *Kite {
	k := NewKite(KiteOptions{
		APIKey:      apiKey,
		AccessToken: accessToken,
		Now:         func() time.Time { return time.Date(2024, 6, 10, 9, 15, 0, 0, time.UTC) },
	})
	k.newClient = func(string, time.Duration) kiteClient { return fake }
	return k
}

func TestKiteFetch(t *testing.T) {
	fake := &fakeKiteClient{
		instruments: kiteconnect.Instruments{
			{InstrumentToken: 408065, Tradingsymbol: "INFY"},
			{InstrumentToken: 2953217, Tradingsymbol: "TCS"},
		},
		candles: []kiteconnect.HistoricalData{{
			Date:   models.Time{Time: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)},
			Open:   3800,
			High:   3860.5,
			Low:    3795,
			Close:  3850.25,
			Volume: 1500000,
		}},
	}
	body, err := newTestKite(fake, "key", "token").Fetch(context.Background(), "tcs")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fake.accessToken != "token" || fake.gotToken != 2953217 || fake.gotInterval != "day" {
		t.Fatalf("unexpected call token=%q instrument=%d interval=%s", fake.accessToken, fake.gotToken, fake.gotInterval)
	}
	if !fake.gotTo.Equal(fake.gotFrom.AddDate(0, 1, 0)) {
		t.Fatalf("expected one month window, got %s - %s", fake.gotFrom, fake.gotTo)
	}
	if !strings.Contains(body, `"symbol":"TCS"`) || !strings.Contains(body, `"close":"3850.25"`) || !strings.Contains(body, `"volume":"1500000"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestKiteMissingCredentials(t *testing.T) {
	svc := NewService(nil, newTestKite(&fakeKiteClient{}, "key", ""))
	got := svc.Fetch(context.Background(), "TCS", ProviderKite)
	if got != "Kite Connect client is not initialized. Please check your credentials." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestKiteErrors(t *testing.T) {
	fake := &fakeKiteClient{instruments: kiteconnect.Instruments{{InstrumentToken: 1, Tradingsymbol: "INFY"}}}
	svc := NewService(nil, newTestKite(fake, "key", "token"))
	if got := svc.Fetch(context.Background(), "TCS", ProviderKite); got != "Error fetching data from Kite Connect: instrument TCS not found on NSE" {
		t.Fatalf("unexpected text %q", got)
	}

	fake.instruments = kiteconnect.Instruments{{InstrumentToken: 2, Tradingsymbol: "TCS"}}
	fake.histErr = errors.New("Invalid `api_key` or `access_token`.")
	if got := svc.Fetch(context.Background(), "TCS", ProviderKite); !strings.HasSuffix(got, "Invalid `api_key` or `access_token`.") {
		t.Fatalf("unexpected text %q", got)
	}
}
