package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
	AdminKey    string
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("BOOKHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("BOOKHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "bookhub"
	}

	adminKey := os.Getenv("BOOKHUB_ADMIN_KEY")
	if adminKey == "" {
		adminKey = "dev-admin-key"
	}

	dur := 24 * time.Hour
	if h := os.Getenv("BOOKHUB_JWT_TTL_HOURS"); h != "" {
		if n, err := strconv.Atoi(h); err == nil && n > 0 {
			dur = time.Duration(n) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: dur,
		AdminKey:    adminKey,
	}
}

// SearchConfig points at the hosted product-search index queried for
// category listings.
type SearchConfig struct {
	AppID     string
	APIKey    string
	IndexName string
}

func LoadSearchConfig() SearchConfig {
	cfg := SearchConfig{
		AppID:     os.Getenv("ALGOLIA_APP_ID"),
		APIKey:    os.Getenv("ALGOLIA_API_KEY"),
		IndexName: os.Getenv("ALGOLIA_INDEX_NAME"),
	}
	if cfg.AppID == "" {
		cfg.AppID = "AR33G9NJGJ"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "96c16938971ef89ae1d14e21494e2114"
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "shopify_products_us" // US index
	}
	return cfg
}

type ScraperConfig struct {
	BaseURL        string
	NavTimeout     time.Duration
	MaxDetailJobs  int64 // concurrent headless sessions for detail fan-out
	FreshFor       time.Duration
	MinScrapeDelay time.Duration
	MaxScrapeDelay time.Duration
}

func LoadScraperConfig() ScraperConfig {
	base := os.Getenv("BOOKHUB_SOURCE_BASE_URL")
	if base == "" {
		base = "https://www.worldofbooks.com"
	}

	jobs := int64(3)
	if s := os.Getenv("BOOKHUB_MAX_DETAIL_JOBS"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			jobs = n
		}
	}

	return ScraperConfig{
		BaseURL:        base,
		NavTimeout:     60 * time.Second,
		MaxDetailJobs:  jobs,
		FreshFor:       24 * time.Hour,
		MinScrapeDelay: 2 * time.Second,
		MaxScrapeDelay: 5 * time.Second,
	}
}
