package wire_test

import (
	"bytes"
	"testing"

	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/wire"
)

func mustEndpoint(t *testing.T, s string) meta.Endpoint {
	t.Helper()
	ep, err := meta.ParseEndpoint(s)
	if err != nil {
		t.Fatalf("ParseEndpoint(%q): %v", s, err)
	}
	return ep
}

func TestEncodeGetMapsAlwaysEmitsZero(t *testing.T) {
	buf := wire.EncodeGetMaps(&wire.GetMaps{MapID: 0xdeadbeef})
	if len(buf) != 8 {
		t.Fatalf("got %d bytes, want 8", len(buf))
	}
	if !bytes.Equal(buf, make([]byte, 8)) {
		t.Fatalf("expected all-zero buffer, got %x", buf)
	}

	gm, err := wire.DecodeGetMaps(buf)
	if err != nil {
		t.Fatalf("DecodeGetMaps: %v", err)
	}
	if gm.MapID != 0 {
		t.Fatalf("MapID = %d, want 0", gm.MapID)
	}
}

func TestDecodeGetMapsRejectsBadSize(t *testing.T) {
	if _, err := wire.DecodeGetMaps([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected protocol error on truncated GET_MAPS")
	}
}

func TestGetMapsResultRoundTrip(t *testing.T) {
	res := &wire.GetMapsResult{
		Devd: meta.DevdMap{Addrs: []meta.Endpoint{
			mustEndpoint(t, "10.0.0.1:5000"),
			mustEndpoint(t, "10.0.0.2:5000"),
			mustEndpoint(t, "10.0.0.3:5000"),
		}},
	}

	buf, err := wire.EncodeGetMapsResult(res)
	if err != nil {
		t.Fatalf("EncodeGetMapsResult: %v", err)
	}
	if len(buf) != wire.EncodedSize(res) {
		t.Fatalf("encoded %d bytes, EncodedSize reports %d", len(buf), wire.EncodedSize(res))
	}

	got, err := wire.DecodeGetMapsResult(buf)
	if err != nil {
		t.Fatalf("DecodeGetMapsResult: %v", err)
	}
	if got.Err != 0 {
		t.Fatalf("Err = %d, want 0", got.Err)
	}
	if len(got.Devd.Addrs) != len(res.Devd.Addrs) {
		t.Fatalf("got %d addrs, want %d", len(got.Devd.Addrs), len(res.Devd.Addrs))
	}
	for i, ep := range res.Devd.Addrs {
		if got.Devd.Addrs[i] != ep {
			t.Fatalf("addr[%d] = %s, want %s", i, got.Devd.Addrs[i], ep)
		}
	}
}

func TestGetMapsResultErrorCarriesNoAddrs(t *testing.T) {
	res := &wire.GetMapsResult{Err: -12} // -ENOMEM

	buf, err := wire.EncodeGetMapsResult(res)
	if err != nil {
		t.Fatalf("EncodeGetMapsResult: %v", err)
	}
	if len(buf) != wire.EncodedSize(res) {
		t.Fatalf("encoded %d bytes, want %d", len(buf), wire.EncodedSize(res))
	}

	got, err := wire.DecodeGetMapsResult(buf)
	if err != nil {
		t.Fatalf("DecodeGetMapsResult: %v", err)
	}
	if got.Err != -12 {
		t.Fatalf("Err = %d, want -12", got.Err)
	}
	if len(got.Devd.Addrs) != 0 {
		t.Fatalf("expected no addrs on error result, got %d", len(got.Devd.Addrs))
	}
}

func TestDecodeGetMapsResultRejectsSizeMismatch(t *testing.T) {
	res := &wire.GetMapsResult{
		Devd: meta.DevdMap{Addrs: []meta.Endpoint{mustEndpoint(t, "10.0.0.1:5000")}},
	}
	buf, err := wire.EncodeGetMapsResult(res)
	if err != nil {
		t.Fatalf("EncodeGetMapsResult: %v", err)
	}

	// truncate by one byte: declared nr_addrs no longer agrees with size.
	if _, err := wire.DecodeGetMapsResult(buf[:len(buf)-1]); err == nil {
		t.Fatal("expected protocol error on truncated GET_MAPS_RESULT")
	}
}

func TestEncodeGetMapsResultRejectsOversizedMap(t *testing.T) {
	addrs := make([]meta.Endpoint, meta.MaxAddrs+1)
	res := &wire.GetMapsResult{Devd: meta.DevdMap{Addrs: addrs}}
	if _, err := wire.EncodeGetMapsResult(res); err == nil {
		t.Fatal("expected invalid-arg error encoding an oversized map")
	}
}
