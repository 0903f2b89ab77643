package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/audio"
	"github.com/morganstate-cs/morganai/pkg/cli"
	"github.com/morganstate-cs/morganai/pkg/realtime"
)

// fileOpener adapts a PCM file to the realtime capture source,
// resampling to the wire format on the way in.
type fileOpener struct {
	path   string
	format audio.Format
}

func (o *fileOpener) Open() (realtime.Source, error) {
	var r io.Reader
	if o.path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(o.path)
		if err != nil {
			return nil, err
		}
		r = f
	}
	if o.format != audio.L16Mono24K {
		rs, err := audio.NewResampler(r, o.format, audio.L16Mono24K)
		if err != nil {
			return nil, err
		}
		return audio.NewReaderSource(rs, audio.L16Mono24K), nil
	}
	return audio.NewReaderSource(r, audio.L16Mono24K), nil
}

var talkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Hold a realtime voice conversation",
	Long: `Open a realtime session with the assistant. Microphone input is read
as raw little-endian 16-bit PCM from --in (use "-" for stdin); the
assistant's spoken reply is written as 24kHz mono PCM to --out.

With --text the session runs without audio input: the message is sent
as a typed conversation turn and the spoken reply still lands in --out.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cctx, err := currentContext()
		if err != nil {
			return err
		}
		if cctx.OpenAIKey == "" {
			return fmt.Errorf("context %q has no openai-key", cctx.Name)
		}
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		rate, _ := cmd.Flags().GetInt("rate")
		stereo, _ := cmd.Flags().GetBool("stereo")
		text, _ := cmd.Flags().GetString("text")
		voice, _ := cmd.Flags().GetString("voice")
		instructions, _ := cmd.Flags().GetString("instructions")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		logger := newLogger()

		if text == "" && in == "" {
			return fmt.Errorf("give --in for voice input or --text for a typed turn")
		}

		outFile, err := os.Create(out)
		if err != nil {
			return err
		}
		defer outFile.Close()

		opts := []realtime.Option{
			realtime.WithLogger(logger),
			realtime.WithPlayer(audio.NewWriterPlayer(outFile, audio.L16Mono24K)),
		}
		if in != "" {
			opts = append(opts, realtime.WithSource(&fileOpener{
				path:   in,
				format: audio.Format{SampleRate: rate, Stereo: stereo},
			}))
		}
		client := realtime.NewClient(opts...)
		defer client.Disconnect()

		done := make(chan error, 1)
		finish := func(err error) {
			select {
			case done <- err:
			default:
			}
		}

		client.On(realtime.EventAssistantMessage, func(ev *realtime.ServerEvent) {
			fmt.Println(ev.Text)
		})
		client.On(realtime.EventResponseAudioTranscriptDelta, func(ev *realtime.ServerEvent) {
			fmt.Print(ev.Delta)
		})
		client.On(realtime.EventResponseAudioTranscriptDone, func(*realtime.ServerEvent) {
			fmt.Println()
		})
		client.On(realtime.EventSpeechStarted, func(*realtime.ServerEvent) {
			cli.PrintInfo("speech detected")
		})
		client.On(realtime.EventRecordingStopped, func(*realtime.ServerEvent) {
			client.CommitAudioBuffer()
			client.GenerateResponse()
		})
		client.On(realtime.EventResponseDone, func(*realtime.ServerEvent) {
			if err := client.PlayAudioQueue(); err != nil {
				finish(err)
				return
			}
			finish(nil)
		})
		client.On(realtime.EventError, func(ev *realtime.ServerEvent) {
			if ev.ErrorDetail != nil {
				finish(ev.ErrorDetail.Err())
			}
		})

		ctx := cmd.Context()
		if err := client.Connect(ctx, cctx.OpenAIKey); err != nil {
			return err
		}
		if voice != "" {
			client.UpdateVoice(voice)
		}
		if instructions != "" {
			client.UpdateInstructions(instructions)
		}

		if text != "" {
			if !client.SendTextMessage(text) || !client.GenerateResponse() {
				return fmt.Errorf("session is not ready")
			}
		} else {
			if err := client.StartRecording(); err != nil {
				return err
			}
		}

		select {
		case err := <-done:
			if err != nil {
				return err
			}
			cli.PrintSuccess("reply written to %s", out)
			return nil
		case <-time.After(timeout):
			return fmt.Errorf("no response within %s", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	},
}

func init() {
	talkCmd.Flags().String("in", "", "input PCM file (\"-\" for stdin)")
	talkCmd.Flags().String("out", "reply.pcm", "output PCM file")
	talkCmd.Flags().Int("rate", 24000, "input sample rate")
	talkCmd.Flags().Bool("stereo", false, "input is stereo")
	talkCmd.Flags().String("text", "", "send a typed message instead of audio")
	talkCmd.Flags().String("voice", "", "assistant voice")
	talkCmd.Flags().String("instructions", "", "session instructions override")
	talkCmd.Flags().Duration("timeout", 2*time.Minute, "give up after this long")
	rootCmd.AddCommand(talkCmd)
}
