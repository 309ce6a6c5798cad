package scraper

// Browser drives one long-lived page. Calls are sequential.
type Browser interface {
	// Open loads a search-results page.
	Open(url string) error

	// ListingLinks returns detail-page links on the current results page.
	ListingLinks() ([]string, error)

	// NextPage advances the results and reports false when there is no
	// next-page control.
	NextPage() (bool, error)

	// Detail loads a listing page and returns its raw text.
	Detail(url string) (RawDetail, error)

	Close()
}
