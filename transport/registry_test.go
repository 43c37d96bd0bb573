package transport_test

import (
	"testing"

	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/transport"
	"github.com/valversity/ngnfs-go/wire"
)

func TestDialConnectsToRegisteredListener(t *testing.T) {
	serverEP, err := meta.ParseEndpoint("127.0.0.1:7200")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}
	clientEP, err := meta.ParseEndpoint("127.0.0.1:7201")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}

	server := transport.NewLocal(serverEP)
	transport.Register(server)
	defer transport.Deregister(server)

	var got bool
	if err := server.RegisterRecv(wire.MsgGetMaps, func(meta.Endpoint, *transport.Desc) error {
		got = true
		return nil
	}); err != nil {
		t.Fatalf("RegisterRecv: %v", err)
	}

	client := transport.NewLocal(clientEP)
	if err := transport.Dial(client, serverEP); err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if err := client.Send(&transport.Desc{Type: wire.MsgGetMaps, Peer: serverEP}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !got {
		t.Fatal("server never received the dialed message")
	}
}

func TestDialFailsWithoutAListener(t *testing.T) {
	clientEP, err := meta.ParseEndpoint("127.0.0.1:7202")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}
	nobody, err := meta.ParseEndpoint("127.0.0.1:7203")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}

	client := transport.NewLocal(clientEP)
	if err := transport.Dial(client, nobody); err == nil {
		t.Fatal("expected Dial to fail when nothing is registered at peer")
	}
}
