package commands

import (
	"fmt"
	"os"
	"time"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/scrapers/instagram"
	"followtrack-backend/lib/scrapers/kit"
	"followtrack-backend/lib/scrapers/linkedin"
	"followtrack-backend/lib/scrapers/twitter"
	"followtrack-backend/lib/scrapers/youtube"
	"followtrack-backend/services/submitter"
)

type CompanyConfig struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

type LinkedInConfig struct {
	ProfileURL    string          `json:"profile_url"`
	Companies     []CompanyConfig `json:"companies"`
	NewsletterURL string          `json:"newsletter_url"`
}

type TwitterConfig struct {
	Username string `json:"username"`
}

type InstagramConfig struct {
	Username    string `json:"username"`
	APIEndpoint string `json:"api_endpoint"`
}

type YoutubeConfig struct {
	Enabled bool `json:"enabled"`
}

type KitConfig struct {
	Ranges []string `json:"ranges"`
}

type FormConfig struct {
	Name   string            `json:"name"`
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

type StatstoreConfig struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type Config struct {
	Concurrency           int    `json:"concurrency"`
	MaxAttempts           int    `json:"max_attempts"`
	AttemptTimeoutSeconds int    `json:"attempt_timeout_seconds"`
	RunDeadlineSeconds    int    `json:"run_deadline_seconds"`
	StealthProfile        string `json:"stealth_profile"`
	Seed                  int64  `json:"seed"`

	LinkedIn  LinkedInConfig  `json:"linkedin"`
	Twitter   TwitterConfig   `json:"twitter"`
	Instagram InstagramConfig `json:"instagram"`
	Youtube   YoutubeConfig   `json:"youtube"`
	Kit       KitConfig       `json:"kit"`

	Forms     []FormConfig    `json:"forms"`
	Statstore StatstoreConfig `json:"statstore"`
}

func (c Config) profile() browser.Profile {
	if c.StealthProfile == "" {
		return browser.ProfileHardened
	}
	return browser.Profile(c.StealthProfile)
}

// buildJobs assembles the job list in configured order. Order here is
// batch order: results and submission acks come back the same way.
func buildJobs(cfg Config) ([]extract.Job, error) {
	job := func(ex extract.Extractor, profile browser.Profile) extract.Job {
		return extract.Job{
			Extractor:      ex,
			Profile:        profile,
			MaxAttempts:    cfg.MaxAttempts,
			AttemptTimeout: time.Duration(cfg.AttemptTimeoutSeconds) * time.Second,
		}
	}

	var jobs []extract.Job
	if cfg.LinkedIn.ProfileURL != "" {
		jobs = append(jobs, job(linkedin.ProfileExtractor(cfg.LinkedIn.ProfileURL), cfg.profile()))
	}
	for _, company := range cfg.LinkedIn.Companies {
		jobs = append(jobs, job(linkedin.CompanyExtractor(company.Slug, company.URL), cfg.profile()))
	}
	if cfg.LinkedIn.NewsletterURL != "" {
		jobs = append(jobs, job(linkedin.NewsletterExtractor(cfg.LinkedIn.NewsletterURL), cfg.profile()))
	}

	if cfg.Twitter.Username != "" {
		token := os.Getenv("TWITTER_BEARER_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("twitter configured but TWITTER_BEARER_TOKEN is not set")
		}
		jobs = append(jobs, job(twitter.AccountExtractor(cfg.Twitter.Username, token), browser.ProfileStandard))
	}

	if cfg.Instagram.Username != "" {
		jobs = append(jobs, job(instagram.AccountExtractor(cfg.Instagram.Username), cfg.profile()))
		if cfg.Instagram.APIEndpoint != "" {
			jobs = append(jobs, job(
				instagram.APIExtractor(cfg.Instagram.APIEndpoint, cfg.Instagram.Username),
				browser.ProfileStandard,
			))
		}
	}

	if cfg.Youtube.Enabled {
		apiKey := os.Getenv("YOUTUBE_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("YOUTUBE_API_ID")
		}
		channelID := os.Getenv("YOUTUBE_CHANNEL_ID")
		if apiKey == "" || channelID == "" {
			return nil, fmt.Errorf("youtube enabled but YOUTUBE_API_KEY or YOUTUBE_CHANNEL_ID is not set")
		}
		jobs = append(jobs,
			job(youtube.SubscribersExtractor(apiKey, channelID), browser.ProfileStandard),
			job(youtube.ViewsExtractor(apiKey, channelID), browser.ProfileStandard),
		)
	}

	for _, statsRange := range cfg.Kit.Ranges {
		apiKey := os.Getenv("KIT_V4_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("kit ranges configured but KIT_V4_API_KEY is not set")
		}
		jobs = append(jobs, job(kit.GrowthStatsExtractor(apiKey, statsRange), browser.ProfileStandard))
	}

	return jobs, nil
}

func buildForms(cfg Config) []submitter.Form {
	forms := make([]submitter.Form, len(cfg.Forms))
	for i, form := range cfg.Forms {
		forms[i] = submitter.Form{Name: form.Name, URL: form.URL, Fields: form.Fields}
	}
	return forms
}
