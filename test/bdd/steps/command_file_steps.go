package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/eventsource"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
)

type commandFileContext struct {
	event simulation.Event
	err   error
}

func (c *commandFileContext) reset() {
	c.event = nil
	c.err = nil
}

// InitializeCommandFileScenario registers the command grammar steps
func InitializeCommandFileScenario(sc *godog.ScenarioContext) {
	c := &commandFileContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	sc.Step(`^the line "([^"]*)" is parsed$`, c.theLineIsParsed)
	sc.Step(`^it should parse as a ([a-z_]+) event$`, c.itShouldParseAs)
	sc.Step(`^the event should render as "([^"]*)"$`, c.theEventShouldRenderAs)
	sc.Step(`^it should be reported as "([^"]*)"$`, c.itShouldBeReportedAs)
}

func (c *commandFileContext) theLineIsParsed(line string) error {
	c.event, c.err = eventsource.Parse(line)
	return nil
}

func (c *commandFileContext) itShouldParseAs(kind string) error {
	if c.err != nil {
		return fmt.Errorf("expected %s event, got error: %v", kind, c.err)
	}
	if c.event.Kind() != kind {
		return fmt.Errorf("expected %s event, got %s", kind, c.event.Kind())
	}
	return nil
}

func (c *commandFileContext) theEventShouldRenderAs(text string) error {
	if c.event == nil {
		return fmt.Errorf("no event was parsed (error: %v)", c.err)
	}
	if c.event.String() != text {
		return fmt.Errorf("expected event to render as %q, got %q", text, c.event.String())
	}
	return nil
}

func (c *commandFileContext) itShouldBeReportedAs(message string) error {
	var malformed *eventsource.ErrMalformedCommand
	if !errors.As(c.err, &malformed) {
		return fmt.Errorf("expected a malformed command, got event %v and error %v", c.event, c.err)
	}
	if malformed.Error() != message {
		return fmt.Errorf("expected %q, got %q", message, malformed.Error())
	}
	return nil
}
