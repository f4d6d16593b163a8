// Package headshot provides the domain types for a provider-routing image
// generation gateway used by an AI headshot product.
//
// A generation request carries a prompt, up to four reference photos and an
// optional provider hint. The gateway picks exactly one backend, forwards the
// request, and returns a single base64-encoded image. Provider failures are
// normalized into a [FriendlyError] whose Message and Suggestion can be shown
// to end users and whose Retryable flag tells the caller whether trying again
// is worthwhile.
//
// # Provider Routing
//
// [ResolveProvider] applies the routing precedence:
//
//   - an explicit, valid provider ("openai" or "gemini", any case) wins
//   - otherwise the configured default, itself validated, else "openai"
//   - a request with reference images routed to "openai" is moved to "gemini"
//
// The PhotoMaker vendor ([ProviderRunware]) is reached through its own entry
// point and never by resolution.
//
// # Basic Usage
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{
//	        OpenAI: os.Getenv("OPENAI_API_KEY"),
//	        Gemini: os.Getenv("GEMINI_API_KEY"),
//	    },
//	    DefaultProvider: os.Getenv("IMAGE_PROVIDER"),
//	})
//
//	resp, err := c.GenerateImage(ctx, "professional headshot, studio lighting")
//	if err != nil {
//	    fe := headshot.AsFriendly(err)
//	    fmt.Println(fe.Message, fe.Suggestion, fe.Retryable)
//	    return
//	}
//	fmt.Println(len(resp.Base64))
//
// # Error Classification
//
// Each provider package owns an ordered table of [Rule] values. [Classify]
// checks them in order against the raw provider error text and returns the
// first match, falling back to a retryable unknown error. Nothing in this
// module retries automatically.
package headshot
