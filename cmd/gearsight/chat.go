package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// runChat drives the interactive session. The agent keeps its session
// memory across questions, so follow-ups reuse cached query results
// until the game turn moves past their freshness window.
func runChat(ctx context.Context) error {
	env, err := buildEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	fmt.Println("GearSight interactive session. Ask about your save; /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if strings.HasPrefix(line, "/") {
			if done := handleCommand(env, line); done {
				return nil
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		state, err := env.agent.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n", state.FinalAnswer)
		if verbose {
			fmt.Printf("\n[%s question, %.1fs]\n", state.QuestionType, time.Since(start).Seconds())
		}
	}
}

// handleCommand runs a /-prefixed chat command. Returns true to quit.
func handleCommand(e *env, line string) bool {
	switch cmd := strings.Fields(line)[0]; cmd {
	case "/quit", "/exit", "/q":
		return true
	case "/reset":
		e.agent.ResetSession()
		fmt.Println("session memory cleared")
	case "/memory":
		s := e.agent.Session().Context()
		if s == "" {
			s = "(session memory empty)"
		}
		fmt.Println(s)
	case "/help":
		fmt.Println(`Commands:
  /reset   clear cached query results
  /memory  show what the session remembers
  /quit    exit`)
	default:
		fmt.Printf("unknown command %s (try /help)\n", cmd)
	}
	return false
}
