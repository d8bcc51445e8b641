// Tensorzero is a command-line client for a TensorZero gateway.
//
// It runs inferences (blocking or streaming), submits feedback, checks
// gateway health, manages the local call journal, and load-tests a gateway.
//
// Usage:
//
//	# Run an inference against a configured function
//	tensorzero infer --function extract_entities --message "Dr. Salmon visited Seattle."
//
//	# Stream tokens as they generate
//	tensorzero infer --function draft_email --message "Decline politely." --stream
//
//	# Score an inference
//	tensorzero feedback --metric task_success --value true --inference 0196368f-1ae8-7d20-a51a-271d3cf40013
//
//	# Check gateway health
//	tensorzero health
//
//	# Inspect the local call journal
//	tensorzero history list --since 24h
//
// For complete documentation, see: https://github.com/tensorzero/tensorzero-go
package main

func main() {
	Execute()
}
