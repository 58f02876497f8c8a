package generators

import (
	"os"

	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/vars"
)

type (
	OpenRouterAPIKey   string
	OpenRouterEndpoint string
	SiteURL            string
	SiteName           string
)

const DefaultOpenRouterEndpoint = "https://openrouter.ai/api/v1"

func (Module) OpenRouterAPIKey(
	loader configs.Loader,
) OpenRouterAPIKey {
	return vars.FirstNonZero(
		configs.First[OpenRouterAPIKey](loader, "openrouter_api_key"),
		OpenRouterAPIKey(os.Getenv("OPENROUTER_KEY")),
		OpenRouterAPIKey(os.Getenv("OPENROUTER_API_KEY")),
	)
}

func (Module) OpenRouterEndpoint(
	loader configs.Loader,
) OpenRouterEndpoint {
	return vars.FirstNonZero(
		configs.First[OpenRouterEndpoint](loader, "openrouter_endpoint"),
		OpenRouterEndpoint(os.Getenv("OPENROUTER_URL")),
		DefaultOpenRouterEndpoint,
	)
}

func (Module) SiteURL(
	loader configs.Loader,
) SiteURL {
	return vars.FirstNonZero(
		configs.First[SiteURL](loader, "site_url"),
		SiteURL(os.Getenv("SITE_URL")),
	)
}

func (Module) SiteName(
	loader configs.Loader,
) SiteName {
	return vars.FirstNonZero(
		configs.First[SiteName](loader, "site_name"),
		SiteName(os.Getenv("SITE_NAME")),
	)
}

type NewOpenRouter func(args GeneratorArgs) *OpenAI

// NewOpenRouter fills in the endpoint, key and attribution headers unless args already carry them.
func (Module) NewOpenRouter(
	newOpenAI NewOpenAI,
	apiKey OpenRouterAPIKey,
	endpoint OpenRouterEndpoint,
	siteURL SiteURL,
	siteName SiteName,
) NewOpenRouter {
	return func(args GeneratorArgs) *OpenAI {
		args.BaseURL = vars.FirstNonZero(args.BaseURL, string(endpoint))
		args.IsOpenRouter = true
		headers := make(map[string]string, len(args.Headers)+2)
		if siteURL != "" {
			headers["HTTP-Referer"] = string(siteURL)
		}
		if siteName != "" {
			headers["X-Title"] = string(siteName)
		}
		for k, v := range args.Headers {
			headers[k] = v
		}
		args.Headers = headers
		return newOpenAI(
			args,
			vars.FirstNonZero(
				args.APIKey,
				string(apiKey),
			),
		)
	}
}
