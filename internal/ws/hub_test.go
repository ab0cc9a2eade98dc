package ws_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/core/events"
	"github.com/opsvista/opsvista/internal/transport"
	"github.com/opsvista/opsvista/internal/ws"
)

var _ = Describe("Hub", func() {
	var (
		logger  *slog.Logger
		hub     *ws.Hub
		server  *httptest.Server
		dialURL string
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		hub = ws.NewHub(logger)
		go hub.Run()

		handler := ws.NewHandler(transport.NewBaseHandler(logger), hub)
		server = httptest.NewServer(http.HandlerFunc(handler.Serve))
		dialURL = "ws" + strings.TrimPrefix(server.URL, "http")
	})

	AfterEach(func() {
		server.Close()
		hub.Stop()
	})

	dial := func() *websocket.Conn {
		conn, resp, err := websocket.DefaultDialer.Dial(dialURL, nil)
		Expect(err).NotTo(HaveOccurred())
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return conn
	}

	readEnvelope := func(conn *websocket.Conn) ws.Envelope {
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		_, payload, err := conn.ReadMessage()
		Expect(err).NotTo(HaveOccurred())

		var env ws.Envelope
		Expect(json.Unmarshal(payload, &env)).To(Succeed())
		return env
	}

	It("registers connecting clients", func() {
		conn := dial()
		defer conn.Close()

		Eventually(hub.ClientCount).Should(Equal(1))
	})

	It("delivers broadcast frames to connected clients", func() {
		conn := dial()
		defer conn.Close()
		Eventually(hub.ClientCount).Should(Equal(1))

		hub.Broadcast("alert.created", map[string]interface{}{"alert_id": float64(7)})

		env := readEnvelope(conn)
		Expect(env.Type).To(Equal("alert.created"))
		Expect(env.Data).To(HaveKeyWithValue("alert_id", float64(7)))
	})

	It("relays platform events from the event bus", func() {
		bus := events.NewEventBus(logger)
		hub.SubscribeToEvents(bus)

		conn := dial()
		defer conn.Close()
		Eventually(hub.ClientCount).Should(Equal(1))

		event := events.NewPlatformEvent(events.PipelineRunStartedEvent, map[string]interface{}{
			"pipeline_id": float64(3),
		})
		Expect(bus.Publish(context.Background(), event)).To(Succeed())

		env := readEnvelope(conn)
		Expect(env.Type).To(Equal(events.PipelineRunStartedEvent))
		Expect(env.Data).To(HaveKeyWithValue("pipeline_id", float64(3)))
	})

	It("drops disconnected clients", func() {
		conn := dial()
		Eventually(hub.ClientCount).Should(Equal(1))

		conn.Close()
		Eventually(hub.ClientCount).Should(Equal(0))
	})
})
