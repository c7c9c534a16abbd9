// Package competitors provides the competitor site drivers.
//
// # Drivers
//
// ## Arcadi (JSON API)
//
// API: https://www.arcadienvios.com/api/v2/exchange_rates
// Rate: the "rate" of the first entry under the destination currency key.
//
// ## Global66 (JSON API)
//
// API: https://api.global66.com/quote/public
// Rate: quoteData.destinationAmount (legacy: amountDestiny) over the quoted amount.
//
// ## CurrencyBird (JSON API)
//
// API: https://services.prod.currencybird.cl/apigateway-cb/api/public/quotes/
// Only CLP origins are quoted. Rate: value over the quoted amount.
//
// ## BCV (official reference)
//
// URL: https://www.bcv.org.ve/
// The official USD/VES and EUR/VES rates, benchmarked as a reference competitor.
//
// ## Page (generic HTML)
//
// A table-driven driver for static pages: a URL per route (or a URL template),
// optional CSS selectors for the rate text, an embedded state script and the
// sent / received amounts, plus the site's own text rules. XE, Intergiros and
// Curiara are configured this way.
//
// Every driver returns its candidate observations in priority order, and leaves
// the rate extraction to the extract package.
package competitors
