/*
fixsession — FIX protocol decoder and session controller
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/

// Command fixsession drives a session.Controller over a transport: either
// two controllers talking over an in-process net.Pipe() (-demo), or a
// real initiator/acceptor over TCP using SessionConfig from the
// environment.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/stephenlclarke/fixsession/session"
)

// Version, Branch, GitUrl, Sha are injected at build time via -ldflags.
var (
	Version = "0.0.0"
	Branch  = "main"
	GitUrl  = "git@github.com:stephenlclarke/fixsession.git"
	Sha     = "0000000"
)

// SessionConfig binds the environment variables a real fixsession
// endpoint needs to establish itself, via envconfig.
type SessionConfig struct {
	SenderCompID             string `envconfig:"SENDER_COMP_ID" required:"true"`
	TargetCompID             string `envconfig:"TARGET_COMP_ID" required:"true"`
	Role                     string `envconfig:"ROLE" default:"initiator"`
	BeginString              string `envconfig:"BEGIN_STRING" default:"FIX.4.4"`
	HeartbeatIntervalSeconds int    `envconfig:"HEARTBEAT_INTERVAL_SECONDS" default:"30"`
	ListenAddr               string `envconfig:"LISTEN_ADDR"`
	DialAddr                 string `envconfig:"DIAL_ADDR"`
}

func main() {
	demo := flag.Bool("demo", false, "run an in-process initiator/acceptor exchange over net.Pipe() and exit")
	envFile := flag.String("env", ".env", "dotenv file to load before reading environment configuration")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fixsession: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.With(zap.String("version", Version), zap.String("sha", Sha))

	if *demo {
		runDemo(log)
		return
	}

	if err := godotenv.Load(*envFile); err != nil {
		log.Warn("no .env file loaded", zap.String("path", *envFile), zap.Error(err))
	}

	var cfg SessionConfig
	if err := envconfig.Process("FIXSESSION", &cfg); err != nil {
		log.Error("invalid session configuration", zap.Error(err))
		os.Exit(1)
	}

	if err := runTransport(log, cfg); err != nil {
		log.Error("session terminated with error", zap.Error(err))
		os.Exit(1)
	}
}

func roleFromConfig(cfg SessionConfig) session.Role {
	if cfg.Role == "acceptor" {
		return session.RoleAcceptor
	}

	return session.RoleInitiator
}

// runTransport establishes one real TCP session leg: an acceptor
// listens on ListenAddr and handles the first connection it receives,
// an initiator dials DialAddr. Either way, it drives the resulting
// net.Conn with runConn.
func runTransport(log *zap.Logger, cfg SessionConfig) error {
	role := roleFromConfig(cfg)
	connectionID := uuid.New().String()

	controller := session.New(cfg.SenderCompID, cfg.TargetCompID, role, cfg.BeginString, cfg.HeartbeatIntervalSeconds)

	if role == session.RoleAcceptor {
		listener, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
		}
		defer listener.Close()

		log.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("connection_id", connectionID))

		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		defer conn.Close()

		return runConn(log.With(zap.String("connection_id", connectionID)), controller, conn)
	}

	conn, err := net.Dial("tcp", cfg.DialAddr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.DialAddr, err)
	}
	defer conn.Close()

	logon := controller.BuildLogon(false)
	if _, err := conn.Write([]byte(logon)); err != nil {
		return fmt.Errorf("write logon: %w", err)
	}

	log.Info("sent logon", zap.String("connection_id", connectionID))

	return runConn(log.With(zap.String("connection_id", connectionID)), controller, conn)
}

// runConn drives controller against conn until the session terminates
// or the connection closes: read bytes as they arrive, hand them to
// Consume for framing, react to each frame with OnMessage, and write
// out whatever OutboundMessages it produced.
func runConn(log *zap.Logger, controller *session.Controller, conn net.Conn) error {
	reader := bufio.NewReader(conn)
	buf := make([]byte, 4096)

	for controller.State() != session.StateTerminated {
		n, err := reader.Read(buf)
		if n > 0 {
			for _, frame := range controller.Consume(string(buf[:n])) {
				action := controller.OnMessage(frame)

				log.Info("processed frame",
					zap.String("disposition", action.Disposition.String()),
					zap.Strings("events", action.Events))

				for _, out := range action.OutboundMessages {
					if _, werr := conn.Write([]byte(out)); werr != nil {
						return fmt.Errorf("write response: %w", werr)
					}
				}
			}
		}

		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
	}

	return nil
}

// runDemo runs a scripted initiator/acceptor logon-heartbeat-logout
// exchange over an in-process net.Pipe(), needing no real socket. The
// initiator's script writes drive the exchange; a discard reader keeps
// its end of the pipe drained so the acceptor's replies never block.
func runDemo(log *zap.Logger) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	initiator := session.New("CLIENT", "SERVER", session.RoleInitiator, "FIX.4.4", 30)
	acceptor := session.New("SERVER", "CLIENT", session.RoleAcceptor, "FIX.4.4", 30)

	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := runConn(log.With(zap.String("side", "acceptor")), acceptor, serverConn); err != nil {
			log.Warn("acceptor stopped", zap.Error(err))
		}
	}()

	go func() {
		_, _ = io.Copy(io.Discard, clientConn)
	}()

	logon := initiator.BuildLogon(false)
	if _, err := clientConn.Write([]byte(logon)); err != nil {
		log.Error("demo: write logon", zap.Error(err))
		return
	}

	heartbeat := initiator.BuildHeartbeat("")
	if _, err := clientConn.Write([]byte(heartbeat)); err != nil {
		log.Error("demo: write heartbeat", zap.Error(err))
		return
	}

	logout := initiator.BuildLogout("demo complete")
	if _, err := clientConn.Write([]byte(logout)); err != nil {
		log.Error("demo: write logout", zap.Error(err))
		return
	}

	<-done

	log.Info("demo finished", zap.String("initiator_state", initiator.State().String()))
}
