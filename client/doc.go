// Package client provides the unified image generation gateway.
//
// The Client wraps the provider implementations and provides:
//
//   - Provider routing: each request goes to exactly one provider
//   - Lazy provider setup: SDK clients are created on first use
//   - Typed failures: every error is a *headshot.FriendlyError
//   - Event emission: observable operations via channel
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
//	resp, err := c.GenerateImage(ctx, "professional headshot, soft light")
//
// # Routing
//
// An explicit provider wins over the configured default. Requests with
// reference images never go to OpenAI; they are sent to Gemini instead:
//
//	// Routes to Gemini even though OpenAI was requested
//	resp, _ := c.GenerateImage(ctx, prompt,
//	    headshot.WithProvider("openai"),
//	    headshot.WithReferenceImages(photo),
//	)
//
// PhotoMaker is never chosen by routing. Use GeneratePhotoMaker:
//
//	resp, _ := c.GeneratePhotoMaker(ctx, "portrait of a woman", headshot.WithReferenceImages(photo))
//
// # Retries
//
// The client never retries. FriendlyError.Retryable tells the caller whether
// trying again may help.
//
// # Events
//
// Observe operations via an event channel:
//
//	events := make(chan client.Event, 100)
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{OpenAI: os.Getenv("OPENAI_API_KEY")},
//	    Events:  events,
//	})
//
//	go func() {
//	    for e := range events {
//	        fmt.Printf("[%s] %s via %s took %v\n", e.Type, e.Operation, e.Provider, e.Duration)
//	    }
//	}()
package client
