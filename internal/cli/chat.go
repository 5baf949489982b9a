package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"campusinterview/internal/app"
	"campusinterview/internal/model"
	"campusinterview/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Take an interview in the terminal",
	Long: `Start a session and answer questions from stdin.

Commands:
  /skip     skip the current question
  /undo     revert the last answer or skip
  /restart  start over from the first question
  /history  print the conversation so far
  /quit     leave the interview`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("name", "", "Name recorded on the session")
	chatCmd.Flags().StringSlice("topic", nil, "Topic name to ask first (repeatable)")
	chatCmd.Flags().String("resume", "", "Continue an existing session id (sqlite or mongo store)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogMode, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	name, _ := cmd.Flags().GetString("name")
	topics, _ := cmd.Flags().GetStringSlice("topic")
	resume, _ := cmd.Flags().GetString("resume")

	var session *model.Session
	if resume != "" {
		session, err = a.Interview.GetSession(ctx, resume)
	} else {
		session, err = a.Interview.StartSession(ctx, name, topics)
	}
	if err != nil {
		return err
	}

	c := &chat{
		svc: a.Interview,
		id:  session.ID,
		in:  bufio.NewScanner(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
	fmt.Fprintf(c.out, "Session %s\n\n", session.ID)
	return c.run(ctx, a.Interview.PendingPrompt(session))
}

type chat struct {
	svc *service.InterviewService
	id  string
	in  *bufio.Scanner
	out io.Writer
}

func (c *chat) run(ctx context.Context, prompt string) error {
	for {
		fmt.Fprintf(c.out, "%s\n> ", prompt)
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())

		next, done, err := c.handle(ctx, line)
		if err != nil {
			if !service.IsClientError(err) {
				return err
			}
			// stay on the same prompt
			fmt.Fprintf(c.out, "(%v)\n", err)
			continue
		}
		if done {
			return nil
		}
		prompt = next
	}
}

// handle executes one line and returns the next prompt. done reports that
// the loop should stop.
func (c *chat) handle(ctx context.Context, line string) (string, bool, error) {
	switch line {
	case "/quit", "/exit":
		fmt.Fprintf(c.out, "Session saved as %s\n", c.id)
		return "", true, nil

	case "/skip":
		res, err := c.svc.SkipQuestion(ctx, c.id)
		if err != nil {
			return "", false, err
		}
		return c.after(res)

	case "/undo":
		s, err := c.svc.UndoLast(ctx, c.id)
		if err != nil {
			return "", false, err
		}
		fmt.Fprintln(c.out, "(last turn undone)")
		return c.svc.PendingPrompt(s), false, nil

	case "/restart":
		s, err := c.svc.Restart(ctx, c.id)
		if err != nil {
			return "", false, err
		}
		fmt.Fprintln(c.out, "(interview restarted)")
		return c.svc.PendingPrompt(s), false, nil

	case "/history":
		msgs, err := c.svc.GetMessages(ctx, c.id)
		if err != nil {
			return "", false, err
		}
		// the last message is the pending prompt, printed again by the loop
		for i, m := range msgs {
			if i == len(msgs)-1 && m.Role == model.RoleAssistant {
				break
			}
			fmt.Fprintf(c.out, "%-9s %s\n", m.Role+":", m.Content)
		}
		s, err := c.svc.GetSession(ctx, c.id)
		if err != nil {
			return "", false, err
		}
		if s.IsFinished() {
			return "", true, nil
		}
		return c.svc.PendingPrompt(s), false, nil
	}

	res, err := c.svc.ProcessAnswer(ctx, c.id, line)
	if errors.Is(err, service.ErrSessionCompleted) {
		fmt.Fprintln(c.out, service.FinishedMessage)
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	return c.after(res)
}

func (c *chat) after(res *model.InterviewResult) (string, bool, error) {
	if res.IsFinished {
		fmt.Fprintln(c.out, res.AssistantMessage)
		return "", true, nil
	}
	return res.AssistantMessage, false, nil
}
