package config

const (
	DefaultScanMin       = 0.001
	DefaultScanMax       = 1000
	DefaultQuoteAmount   = 100
	defaultTimeout       = "30s"
	defaultInterval      = "1h"
	defaultDailyInterval = "24h"
	defaultP2PInterval   = "10m"
)

// DefaultConfig returns the default benchmark configuration
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			ScanMin: DefaultScanMin,
			ScanMax: DefaultScanMax,
		},
		Amounts: AmountsConfig{
			ByCurrency: map[string]float64{
				"CLP": 100000,
				"COP": 120000,
				"EUR": 50,
				"PEN": 150,
			},
			Default: DefaultQuoteAmount,
		},
		Competitors: DefaultCompetitors(),
	}
}

// DefaultCompetitors returns the built-in competitor table
func DefaultCompetitors() []CompetitorConfig {
	return []CompetitorConfig{
		{
			Name:     "Arcadi",
			Kind:     "arcadi",
			URL:      "https://www.arcadienvios.com/api/v2/exchange_rates",
			Routes:   []string{"CLPVES", "COPVES", "CLPCOP", "CLPUS", "CLPEUR"},
			Timeout:  defaultTimeout,
			Interval: defaultInterval,
		},
		{
			Name: "Global66",
			Kind: "global66",
			URL:  "https://api.global66.com/quote/public",
			Routes: []string{
				"CLPVES", "PENVES", "COPVES", "CLPCOP", "CLPUS", "CLPARS",
				"CLPEUR", "CLPPEN", "COPARS", "COPPEN", "COPEUR", "COPUS",
				"EURARS", "EURCOP", "EURPEN", "EURUS", "EURVES",
			},
			Timeout:  defaultTimeout,
			Interval: defaultInterval,
		},
		{
			Name:     "CurrencyBird",
			Kind:     "currencybird",
			URL:      "https://services.prod.currencybird.cl/apigateway-cb/api/public/quotes/",
			Routes:   []string{"CLPCOP", "CLPPEN", "CLPARS", "CLPUS", "CLPEUR"},
			Timeout:  defaultTimeout,
			Interval: defaultInterval,
		},
		{
			Name:     "BCV",
			Kind:     "bcv",
			URL:      "https://www.bcv.org.ve/",
			Routes:   []string{"USDVES", "EURVES"},
			Timeout:  defaultTimeout,
			Interval: defaultDailyInterval,
		},
		{
			Name:     "Binance P2P",
			Kind:     "binance_p2p",
			URL:      "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search",
			Routes:   []string{"USDVES"},
			Timeout:  defaultTimeout,
			Interval: defaultP2PInterval,
		},
		{
			Name:        "XE",
			Kind:        "page",
			URL:         "https://www.xe.com/",
			URLTemplate: "https://www.xe.com/currencyconverter/convert/?Amount=1&From={origin}&To={dest}",
			Routes:      []string{"EURARS", "EURCOP", "EURPEN", "EURUSD"},
			Timeout:     defaultTimeout,
			Interval:    defaultInterval,
			Rules: []RuleConfig{
				{
					Name:     "converter result",
					Kind:     RuleKindTemplate,
					Template: "= {NUMBER}",
				},
			},
		},
		{
			Name: "Intergiros",
			Kind: "page",
			URL:  "https://www.intergiros.com/",
			URLs: map[string]string{
				"PENVES": "https://www.intergiros.com/peru-a-venezuela-deposito-bancario/",
				"COPVES": "https://www.intergiros.com/colombia-a-venezuela-deposito-bancario/",
				"BRLVES": "https://www.intergiros.com/brasil-a-venezuela/",
			},
			Routes:   []string{"BRLVES", "COPVES", "PENVES"},
			Timeout:  defaultTimeout,
			Interval: defaultInterval,
			Rules: []RuleConfig{
				{
					Name:     "soles to bolivares",
					Kind:     RuleKindTemplate,
					Template: "{ONE} Sol = {NUMBER} Bs",
				},
				{
					Name:     "reales to bolivares",
					Kind:     RuleKindTemplate,
					Template: "{ONE} Real = {NUMBER} Bs",
				},
				{
					Name:     "pesos to bolivares",
					Kind:     RuleKindConversion,
					Template: "{NUMBER} Pesos = {NUMBER} Bs",
				},
				{
					// the rate is printed as origin units per bolivar
					Name:     "origin per bolivar",
					Kind:     RuleKindTemplate,
					Template: "Tasa (?::|=)? {NUMBER}",
					Inverse:  true,
				},
			},
		},
		{
			Name: "Curiara",
			Kind: "page",
			URL:  "https://curiara.com/",
			URLs: map[string]string{
				"EURVES": "https://curiara.com/europa/",
				"COPVES": "https://curiara.com/enviar-dinero-colombia-venezuela/",
				"CLPVES": "https://curiara.com/enviar-dinero-chile-venezuela/",
			},
			Routes:   []string{"EURVES"},
			Timeout:  defaultTimeout,
			Interval: defaultInterval,
			Rules: []RuleConfig{
				{
					Name:     "labelled rate",
					Kind:     RuleKindTemplate,
					Template: "Tasa :? {NUMBER}",
				},
			},
		},
	}
}
