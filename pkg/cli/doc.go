/*
Package cli provides command-line interface utilities for the tensorzero
command.

The cli package includes output formatters, a progress reporter, signal
handling, and the error types commands return.

Output Formatting:

Command results render as text, JSON, or CSV. Tabular results implement
the Table interface so the text formatter can align columns and the CSV
formatter can emit rows:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long-running operations such as bench runs:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalRequests)
	for i := 0; i < totalRequests; i++ {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

SetupSignalHandler returns a context cancelled on the first SIGINT or
SIGTERM, so an in-flight inference stream winds down cleanly. A second
signal exits immediately:

	ctx := cli.SetupSignalHandler()
	events, err := client.InferenceStream(ctx, req)
*/
package cli
