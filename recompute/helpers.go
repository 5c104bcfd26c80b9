package recompute

import (
	"sort"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/money"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/tickerproj"
)

// sortMovements orders movements ascending by (date, id), the order every
// downstream fold (C4, C6) assumes.
func sortMovements(movs []movement.Movement) {
	sort.SliceStable(movs, func(i, j int) bool {
		if movs[i].Date() != movs[j].Date() {
			return movs[i].Date().Before(movs[j].Date())
		}
		return movs[i].ID() < movs[j].ID()
	})
}

// discoverTickerCurrencyKeys finds every (ticker, currency) pair the
// account's movements reference, plus every non-empty currency used by
// any movement. Currency-agnostic Split/DividendDate rows contribute
// neither a key nor a currency. When affectedTickers is non-empty,
// keys for other tickers are skipped — the import only touched those.
func discoverTickerCurrencyKeys(movs []movement.Movement, affectedTickers []movement.TickerID) ([]TCKey, []string) {
	restrict := len(affectedTickers) > 0
	allowed := make(map[movement.TickerID]bool, len(affectedTickers))
	for _, t := range affectedTickers {
		allowed[t] = true
	}

	seenKey := map[TCKey]bool{}
	seenCurrency := map[string]bool{}
	var keys []TCKey
	var currencies []string
	for _, mv := range movs {
		if c := mv.Currency(); c != "" && !seenCurrency[c] {
			seenCurrency[c] = true
			currencies = append(currencies, c)
		}
		t, ok := mv.Ticker()
		if !ok {
			continue
		}
		if restrict && !allowed[t] {
			continue
		}
		c := mv.Currency()
		if c == "" {
			continue // Split/DividendDate ride along with whatever currency series the ticker already has.
		}
		k := TCKey{Ticker: t, Currency: c}
		if !seenKey[k] {
			seenKey[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Ticker != keys[j].Ticker {
			return keys[i].Ticker < keys[j].Ticker
		}
		return keys[i].Currency < keys[j].Currency
	})
	sort.Strings(currencies)
	return keys, currencies
}

// discoverTickersForCurrency returns every ticker traded in currency,
// including tickers only referenced by a currency-agnostic Split or
// DividendDate alongside a same-currency trade elsewhere in movs.
func discoverTickersForCurrency(movs []movement.Movement, currency string) []movement.TickerID {
	keys, _ := discoverTickerCurrencyKeys(movs, nil)
	var out []movement.TickerID
	for _, k := range keys {
		if k.Currency == currency {
			out = append(out, k.Ticker)
		}
	}
	return out
}

// filterForTickerCurrency selects movs belonging to k: a direct match on
// (Ticker, Currency), or a currency-agnostic movement (Currency() == "")
// on the same ticker, per §4.4's ticker-currency slice definition.
func filterForTickerCurrency(movs []movement.Movement, k TCKey) []movement.Movement {
	out := make([]movement.Movement, 0, len(movs))
	for _, mv := range movs {
		t, ok := mv.Ticker()
		if !ok || t != k.Ticker {
			continue
		}
		if c := mv.Currency(); c != "" && c != k.Currency {
			continue
		}
		out = append(out, mv)
	}
	return out
}

// currenciesOfTicker lists every currency movs (one account's movements)
// trade ticker in.
func currenciesOfTicker(movs []movement.Movement, ticker movement.TickerID) []string {
	keys, _ := discoverTickerCurrencyKeys(movs, nil)
	var out []string
	for _, k := range keys {
		if k.Ticker == ticker {
			out = append(out, k.Currency)
		}
	}
	return out
}

// filterFromDate returns the suffix of series whose date is >= from,
// preserving order.
func filterFromDate[T any](series []T, from date.Date, dateOf func(T) date.Date) []T {
	out := make([]T, 0, len(series))
	for _, s := range series {
		if !dateOf(s).Before(from) {
			out = append(out, s)
		}
	}
	return out
}

func dedupeAccounts(accounts []movement.AccountID) []movement.AccountID {
	seen := map[movement.AccountID]bool{}
	var out []movement.AccountID
	for _, a := range accounts {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupeBrokers(brokers []movement.BrokerID) []movement.BrokerID {
	seen := map[movement.BrokerID]bool{}
	var out []movement.BrokerID
	for _, b := range brokers {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func accountsToBrokers(accounts []movement.AccountID, dir AccountDirectory) []movement.BrokerID {
	out := make([]movement.BrokerID, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, dir.BrokerOf(a))
	}
	return out
}

type zeroPrices struct{}

func (zeroPrices) LatestPrice(movement.TickerID, date.Date) (money.Money, bool) {
	return money.Money{}, false
}

func pricesOrZero(p tickerproj.PriceSource) tickerproj.PriceSource {
	if p == nil {
		return zeroPrices{}
	}
	return p
}
