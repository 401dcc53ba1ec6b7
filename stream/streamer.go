package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// Streamer connects a Controller to MQTT: input messages are read from one
// topic and binary frames are published to another.
type Streamer struct {
	client     mqtt.Client
	controller *Controller
	inputTopic string
	frameTopic string
	logger     *log.Logger
	now        func() time.Time
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(client mqtt.Client, controller *Controller, inputTopic, frameTopic string, logger *log.Logger) *Streamer {
	s := new(Streamer)
	s.client = client
	s.controller = controller
	s.inputTopic = inputTopic
	s.frameTopic = frameTopic
	s.logger = logger
	s.now = time.Now
	return s
}

// Subscribe listens for input messages. Call it from the MQTT on-connect
// handler so subscriptions survive reconnects.
func (s *Streamer) Subscribe() error {
	token := s.client.Subscribe(s.inputTopic, 0, s.handleInput)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", s.inputTopic, token.Error())
	}
	s.logger.Info("subscribed", "topic", s.inputTopic)
	return nil
}

func (s *Streamer) handleInput(_ mqtt.Client, msg mqtt.Message) {
	in, err := DecodeInput(msg.Payload(), s.now())
	if err != nil {
		s.logger.Warn("dropping input message", "topic", msg.Topic(), "err", err)
		return
	}
	s.controller.Submit(in)
}

// SendFrame publishes a frame as binary over MQTT.
func (s *Streamer) SendFrame(f *Frame) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	token := s.client.Publish(s.frameTopic, 0, false, b)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", s.frameTopic)
	}
	return token.Error()
}

// Run causes the Streamer to send frames while the field is animating.
func (s *Streamer) Run(ctx context.Context) error {
	return s.controller.Run(ctx, s.SendFrame)
}
