package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidscribe/vidscribe-cli/client"
	"github.com/vidscribe/vidscribe-cli/config"
	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

func testConfig(format config.OutputFormat) func() (*config.CLIConfig, error) {
	return func() (*config.CLIConfig, error) {
		cfg := config.DefaultConfig()
		cfg.OutputFormat = format
		return cfg, nil
	}
}

func TestAnalyzeCommand_RequiresArg(t *testing.T) {
	cmd := NewAnalyzeCommand(&AnalyzeCommandDeps{
		LoadConfig: testConfig(config.OutputFormatText),
	})
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestAnalyzeCommand_URLSource(t *testing.T) {
	var gotReq *client.AnalyzeRequest
	deps := &AnalyzeCommandDeps{
		LoadConfig: testConfig(config.OutputFormatJSON),
		AnalyzeFn: func(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error) {
			gotReq = req
			return &client.AnalyzeResult{
				Result: &session.AnalysisResult{
					VideoTitle: "Demo",
					Media:      session.EmbeddedPlatform("dQw4w9WgXcQ"),
					Transcript: []session.TranscriptSegment{{Text: "hi", FormattedTimestamp: "00:00:00"}},
				},
			}, nil
		},
	}

	out := &bytes.Buffer{}
	cmd := NewAnalyzeCommand(deps)
	cmd.SetArgs([]string{"https://youtu.be/dQw4w9WgXcQ", "--language", "en"})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())

	require.NotNil(t, gotReq)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", gotReq.VideoURL)
	assert.Empty(t, gotReq.FilePath)
	assert.Equal(t, "en", gotReq.Language)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, "Demo", payload["video_title"])
}

func TestAnalyzeCommand_FileSource(t *testing.T) {
	var gotReq *client.AnalyzeRequest
	deps := &AnalyzeCommandDeps{
		LoadConfig: testConfig(config.OutputFormatText),
		AnalyzeFn: func(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error) {
			gotReq = req
			return &client.AnalyzeResult{Result: &session.AnalysisResult{VideoTitle: "Clip"}}, nil
		},
	}

	cmd := NewAnalyzeCommand(deps)
	cmd.SetArgs([]string{"./clip.mp4"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, gotReq)
	assert.Equal(t, "./clip.mp4", gotReq.FilePath)
	assert.Empty(t, gotReq.VideoURL)
}

func TestAnalyzeCommand_SoftErrorWarning(t *testing.T) {
	deps := &AnalyzeCommandDeps{
		LoadConfig: testConfig(config.OutputFormatText),
		AnalyzeFn: func(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error) {
			return &client.AnalyzeResult{
				Result:    &session.AnalysisResult{VideoTitle: "Partial"},
				SoftError: "faq generation failed",
			}, nil
		},
	}

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewAnalyzeCommand(deps)
	cmd.SetArgs([]string{"https://youtu.be/x"})
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "faq generation failed")
	assert.Contains(t, out.String(), "Partial")
}

func TestAnalyzeCommand_TransportError(t *testing.T) {
	deps := &AnalyzeCommandDeps{
		LoadConfig: testConfig(config.OutputFormatText),
		AnalyzeFn: func(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error) {
			return nil, fmt.Errorf("%w: dial tcp: refused", vserrors.ErrTransport)
		},
	}

	cmd := NewAnalyzeCommand(deps)
	cmd.SetArgs([]string{"https://youtu.be/x"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, vserrors.IsTransport(err))
}
