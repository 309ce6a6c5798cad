package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

const linksScriptTemplate = `Array.from(document.querySelectorAll(%s)).map(a => a.href).filter(Boolean)`

// clickScriptTemplate clicks the first match and reports whether it existed.
const clickScriptTemplate = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.click();
	return true;
})()`

const detailScriptTemplate = `(() => {
	const S = %s;
	const text = el => el ? el.innerText.trim() : "";
	const q = (root, sel) => root ? root.querySelector(sel) : null;
	const out = {
		address: text(document.querySelector(S.Address)),
		multiUnit: false,
		groups: [],
		priceHeader: "",
		priceCaption: "",
		info: {}
	};

	if (document.querySelector(S.PricingView)) {
		out.multiUnit = true;
		const tab = document.querySelector(S.ActiveTab);
		if (tab) {
			for (const g of tab.querySelectorAll(S.UnitGroup)) {
				const units = [];
				for (const u of g.querySelectorAll(S.UnitRow)) {
					units.push({
						label: text(q(u, S.UnitLabel)),
						rent: text(q(u, S.UnitRent)),
						sqft: text(q(u, S.UnitSqft)),
						available: text(q(u, S.UnitAvailable))
					});
				}
				out.groups.push({details: text(q(g, S.UnitGroupDetails)), units: units});
			}
		}
		return out;
	}

	const header = document.querySelector(S.PriceHeader);
	out.priceHeader = text(header);
	out.priceCaption = text(q(header, S.PriceCaption));
	const panel = document.querySelector(S.InfoPanel);
	if (panel) {
		for (const c of panel.querySelectorAll(S.InfoColumn)) {
			const label = text(q(c, S.InfoLabel));
			if (label) out.info[label] = text(q(c, S.InfoDetail));
		}
	}
	return out;
})()`

// ChromeBrowser is the chromedp-backed Browser. One tab is reused for the
// whole run and every navigation waits on a shared rate limiter.
type ChromeBrowser struct {
	cfg     Config
	tab     context.Context
	cancel  context.CancelFunc
	limiter *rate.Limiter

	linksScript  string
	nextScript   string
	unavailJS    string
	detailScript string
}

func NewChromeBrowser(ctx context.Context, cfg Config) (*ChromeBrowser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	b := &ChromeBrowser{
		cfg:     cfg,
		tab:     tab,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1),
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}

	sel, err := json.Marshal(cfg.Selectors)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.linksScript = fmt.Sprintf(linksScriptTemplate, jsString(cfg.Selectors.ListingLink))
	b.nextScript = fmt.Sprintf(clickScriptTemplate, jsString(cfg.Selectors.NextPage))
	b.unavailJS = fmt.Sprintf(clickScriptTemplate, jsString(cfg.Selectors.ShowUnavailable))
	b.detailScript = fmt.Sprintf(detailScriptTemplate, sel)

	// Starts the browser process.
	if err := chromedp.Run(tab, emulation.SetUserAgentOverride(cfg.UserAgent)); err != nil {
		b.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return b, nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// run executes actions under the per-page timeout.
func (b *ChromeBrowser) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.tab, b.cfg.PageTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (b *ChromeBrowser) navigate(url string) error {
	if err := b.limiter.Wait(b.tab); err != nil {
		return err
	}
	return b.run(
		chromedp.Navigate(url),
		chromedp.Sleep(b.cfg.PageWait),
	)
}

func (b *ChromeBrowser) Open(url string) error {
	return b.navigate(url)
}

func (b *ChromeBrowser) ListingLinks() ([]string, error) {
	var links []string
	err := b.run(chromedp.Evaluate(b.linksScript, &links))
	return links, err
}

func (b *ChromeBrowser) NextPage() (bool, error) {
	if err := b.limiter.Wait(b.tab); err != nil {
		return false, err
	}

	var clicked bool
	if err := b.run(chromedp.Evaluate(b.nextScript, &clicked)); err != nil {
		return false, err
	}
	if !clicked {
		return false, nil
	}
	return true, b.run(chromedp.Sleep(b.cfg.PageWait))
}

func (b *ChromeBrowser) Detail(url string) (RawDetail, error) {
	raw := RawDetail{URL: url}
	if err := b.navigate(url); err != nil {
		return raw, err
	}

	var clicked bool
	if err := b.run(chromedp.Evaluate(b.unavailJS, &clicked)); err != nil {
		return raw, err
	}
	if clicked {
		if err := b.run(chromedp.Sleep(time.Second)); err != nil {
			return raw, err
		}
	}

	err := b.run(chromedp.Evaluate(b.detailScript, &raw))
	raw.URL = url
	return raw, err
}

func (b *ChromeBrowser) Close() {
	b.cancel()
}
