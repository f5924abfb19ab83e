package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/strata/internal/domain"
)

type probe struct {
	domain.BaseUtility
}

type noopCommand struct {
	domain.BaseCommand
}

func (c *noopCommand) Execute(context.Context) error { return nil }

func TestDomainReport(t *testing.T) {
	d := domain.New("counter")
	domain.RegisterUtility(d, &probe{})
	require.NoError(t, d.SendCommand(context.Background(), &noopCommand{}))

	report := DomainReport(d)
	require.Contains(t, report, "## Domain `counter`")
	require.Contains(t, report, "```\n----Utility----\nprobe\n```")
	require.Contains(t, report, "| active | 1 | 0 |")
}

func TestDomainReport_Empty(t *testing.T) {
	require.Contains(t, DomainReport(domain.New("empty")), "_no components registered_")
}

func TestRenderer(t *testing.T) {
	r, err := New(60, "")
	require.NoError(t, err)
	require.Equal(t, 60, r.Width())

	out, err := r.Render(DomainReport(domain.New("counter")))
	require.NoError(t, err)
	require.Contains(t, out, "counter")
	require.Contains(t, out, "processed")
}

func TestRenderer_UnknownStyle(t *testing.T) {
	_, err := New(60, "no-such-style")
	require.Error(t, err)
}
