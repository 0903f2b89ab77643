// Package realtime provides the voice session client for the Morgan AI
// assistant. It maintains a persistent WebSocket connection to an
// OpenAI-Realtime-compatible endpoint, multiplexes typed protocol events,
// streams microphone audio upstream, and queues synthesized speech for
// ordered playback.
//
// # Lifecycle
//
// A Client is constructed once and connected explicitly:
//
//	client := realtime.NewClient(
//	    realtime.WithModel(realtime.ModelGPT4oRealtimePreview),
//	)
//	if err := client.Connect(ctx, apiKey); err != nil {
//	    return err
//	}
//	defer client.Disconnect()
//
// Connect while already connected (or connecting) is a logged no-op. The
// client never reconnects on its own; when the transport drops, it tears
// down recording, playback, and session state, and reports "disconnected".
// Callers that want automatic reconnection should use the chatsock package,
// which implements capped exponential backoff for the text chat channel.
//
// # Events
//
// Inbound protocol frames and locally generated notifications share one
// subscription surface:
//
//	off := client.On(realtime.EventResponseTextDelta, func(ev *realtime.ServerEvent) {
//	    fmt.Print(ev.Delta)
//	})
//	defer off()
//
// Handlers run on the read loop, strictly in frame arrival order. A handler
// panic is recovered and logged; it never stops other handlers or later
// frames. Unknown event types are logged at debug level and ignored.
//
// # Audio
//
// StartRecording captures microphone chunks every 100ms and transmits each
// as an input_audio_buffer.append event without waiting for delivery.
// Inbound response.audio.delta frames are queued in arrival order;
// PlayAudioQueue drains the queue through the configured Player, one chunk
// at a time. A chunk that fails to decode is reported and skipped, never
// stalling the rest of the queue.
package realtime
