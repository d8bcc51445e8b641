// Package gateway is a native client for the TensorZero gateway. It covers
// blocking and streaming inference, feedback, dynamic evaluation runs,
// dataset datapoints, and health checks.
//
// A minimal call:
//
//	client, err := gateway.NewClient(gateway.Config{BaseURL: "http://localhost:3000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := client.Inference(ctx, &gateway.InferenceRequest{
//		FunctionName: "generate_haiku",
//		Input: gateway.Input{
//			Messages: []gateway.Message{gateway.UserMessage("Write a haiku about Go.")},
//		},
//	})
//
// Responses and streaming chunks are tagged unions: type-switch on
// *ChatInferenceResponse / *JSONInferenceResponse (and *ChatChunk /
// *JSONChunk) for the function-type-specific payload, or use Envelope for
// the shared fields.
//
// Errors come in three shapes: *Error for non-2xx gateway replies,
// *InternalError for transport and decoding failures, and *ValidationError
// for requests rejected before they are sent.
package gateway
