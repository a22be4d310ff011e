/*
Package runner implements the terminal chat loop for a Concierge DialogEngine.

It bridges one conversation thread and the outside world: user lines are sanitised and sent
as turns, and the resulting events (replies, approval prompts, errors) are written back through
a pluggable IOHandler.

# Key Components

  - Runner: reads, sends and prints until the input ends.
  - IOHandler: decouples how messages are read and events are shown.
  - TextHandler: interactive terminal usage, with optional markdown rendering.
  - JSONHandler: JSON-Lines for scripted clients.

# Usage

	r := runner.NewRunner(engine,
		runner.WithThreadID("user-1"),
		runner.WithLocale(domain.Locale{Language: "en", Currency: "USD"}),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
