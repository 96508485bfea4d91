package softserv_test

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"io"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/hkdf"

	"xdao.co/psacall/client"
	"xdao.co/psacall/softserv"
	"xdao.co/psacall/wire"
)

func generateAEADKey(t *testing.T, c *client.Client, alg wire.Algorithm) wire.KeyID {
	t.Helper()
	kt := softserv.KeyTypeAES
	bits := uint32(256)
	if alg == softserv.AlgChaCha20Poly1305 {
		kt = softserv.KeyTypeChaCha20
	}
	id, err := c.GenerateKey(wire.KeyAttributes{
		Type:  kt,
		Bits:  bits,
		Usage: wire.UsageEncrypt | wire.UsageDecrypt,
		Alg:   alg,
	})
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return id
}

func TestAEADRoundTrip(t *testing.T) {
	for _, alg := range []wire.Algorithm{softserv.AlgAESGCM, softserv.AlgChaCha20Poly1305} {
		c := newClient(t)
		id := generateAEADKey(t, c, alg)

		nonce := make([]byte, 12)
		if err := c.GenerateRandom(nonce); err != nil {
			t.Fatalf("alg %d: nonce: %v", alg, err)
		}
		plaintext := []byte("sealed and opened whole")
		ad := []byte("context")

		ciphertext := make([]byte, len(plaintext)+16)
		n, err := c.AEADEncrypt(id, alg, nonce, ad, plaintext, ciphertext)
		if err != nil {
			t.Fatalf("alg %d: encrypt: %v", alg, err)
		}
		if n != len(plaintext)+16 {
			t.Fatalf("alg %d: ciphertext length = %d", alg, n)
		}

		recovered := make([]byte, len(plaintext))
		m, err := c.AEADDecrypt(id, alg, nonce, ad, ciphertext[:n], recovered)
		if err != nil {
			t.Fatalf("alg %d: decrypt: %v", alg, err)
		}
		if !bytes.Equal(recovered[:m], plaintext) {
			t.Fatalf("alg %d: round trip mismatch", alg)
		}

		// A flipped ciphertext bit fails authentication.
		ciphertext[3] ^= 1
		_, err = c.AEADDecrypt(id, alg, nonce, ad, ciphertext[:n], recovered)
		if !errors.Is(err, wire.ErrInvalidSignature) {
			t.Fatalf("alg %d: tampered err = %v", alg, err)
		}
		ciphertext[3] ^= 1

		// Wrong additional data fails authentication too.
		_, err = c.AEADDecrypt(id, alg, nonce, []byte("other"), ciphertext[:n], recovered)
		if !errors.Is(err, wire.ErrInvalidSignature) {
			t.Fatalf("alg %d: wrong ad err = %v", alg, err)
		}
	}
}

func TestAEADNilADOmitted(t *testing.T) {
	c := newClient(t)
	id := generateAEADKey(t, c, softserv.AlgAESGCM)
	nonce := make([]byte, 12)

	plaintext := []byte("no associated data")
	ciphertext := make([]byte, len(plaintext)+16)
	n, err := c.AEADEncrypt(id, softserv.AlgAESGCM, nonce, nil, plaintext, ciphertext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	// nil and empty AD authenticate the same bytes.
	recovered := make([]byte, len(plaintext))
	if _, err := c.AEADDecrypt(id, softserv.AlgAESGCM, nonce, []byte{}, ciphertext[:n], recovered); err != nil {
		t.Fatalf("decrypt with empty ad: %v", err)
	}
}

func TestAEADWrongNonceSize(t *testing.T) {
	c := newClient(t)
	id := generateAEADKey(t, c, softserv.AlgAESGCM)
	_, err := c.AEADEncrypt(id, softserv.AlgAESGCM, make([]byte, 8), nil, []byte("pt"), make([]byte, 32))
	if !errors.Is(err, wire.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestAEADStreaming(t *testing.T) {
	c := newClient(t)
	id := generateAEADKey(t, c, softserv.AlgChaCha20Poly1305)
	plaintext := []byte("streamed aead payload, buffered until finish")
	ad := []byte("header")

	var enc client.AEADOperation
	if err := c.AEADEncryptSetup(&enc, id, softserv.AlgChaCha20Poly1305); err != nil {
		t.Fatalf("encrypt setup: %v", err)
	}
	if err := c.AEADSetLengths(&enc, uint32(len(ad)), uint32(len(plaintext))); err != nil {
		t.Fatalf("set lengths: %v", err)
	}
	nonce := make([]byte, 12)
	nonceLen, err := c.AEADGenerateNonce(&enc, nonce)
	if err != nil {
		t.Fatalf("generate nonce: %v", err)
	}
	if nonceLen != 12 {
		t.Fatalf("nonce length = %d", nonceLen)
	}
	if err := c.AEADUpdateAD(&enc, ad); err != nil {
		t.Fatalf("update ad: %v", err)
	}
	if _, err := c.AEADUpdate(&enc, plaintext[:20], make([]byte, len(plaintext))); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := c.AEADUpdate(&enc, plaintext[20:], make([]byte, len(plaintext))); err != nil {
		t.Fatalf("update: %v", err)
	}
	ciphertext := make([]byte, len(plaintext))
	tag := make([]byte, 16)
	ctLen, tagLen, err := c.AEADFinish(&enc, ciphertext, tag)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if ctLen != len(plaintext) || tagLen != 16 {
		t.Fatalf("finish lengths = %d/%d", ctLen, tagLen)
	}
	if enc.Handle != 0 {
		t.Fatalf("encrypt handle not released")
	}

	// The streamed output opens as a whole message.
	whole := append(append([]byte(nil), ciphertext[:ctLen]...), tag[:tagLen]...)
	recovered := make([]byte, len(plaintext))
	n, err := c.AEADDecrypt(id, softserv.AlgChaCha20Poly1305, nonce[:nonceLen], ad, whole, recovered)
	if err != nil {
		t.Fatalf("oneshot decrypt of streamed output: %v", err)
	}
	if !bytes.Equal(recovered[:n], plaintext) {
		t.Fatalf("streamed/oneshot mismatch")
	}

	// And the streaming verify path accepts it.
	var dec client.AEADOperation
	if err := c.AEADDecryptSetup(&dec, id, softserv.AlgChaCha20Poly1305); err != nil {
		t.Fatalf("decrypt setup: %v", err)
	}
	if err := c.AEADSetNonce(&dec, nonce[:nonceLen]); err != nil {
		t.Fatalf("set nonce: %v", err)
	}
	if err := c.AEADUpdateAD(&dec, ad); err != nil {
		t.Fatalf("update ad: %v", err)
	}
	if _, err := c.AEADUpdate(&dec, ciphertext[:ctLen], make([]byte, len(plaintext))); err != nil {
		t.Fatalf("update: %v", err)
	}
	verified := make([]byte, len(plaintext))
	vn, err := c.AEADVerify(&dec, verified, tag[:tagLen])
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !bytes.Equal(verified[:vn], plaintext) {
		t.Fatalf("verify output mismatch")
	}

	// A bad tag is rejected.
	var bad client.AEADOperation
	if err := c.AEADDecryptSetup(&bad, id, softserv.AlgChaCha20Poly1305); err != nil {
		t.Fatalf("decrypt setup: %v", err)
	}
	if err := c.AEADSetNonce(&bad, nonce[:nonceLen]); err != nil {
		t.Fatalf("set nonce: %v", err)
	}
	if err := c.AEADUpdateAD(&bad, ad); err != nil {
		t.Fatalf("update ad: %v", err)
	}
	if _, err := c.AEADUpdate(&bad, ciphertext[:ctLen], make([]byte, len(plaintext))); err != nil {
		t.Fatalf("update: %v", err)
	}
	tag[0] ^= 1
	if _, err := c.AEADVerify(&bad, verified, tag[:tagLen]); !errors.Is(err, wire.ErrInvalidSignature) {
		t.Fatalf("bad tag err = %v", err)
	}
}

func TestAEADDeclaredLengthsEnforced(t *testing.T) {
	c := newClient(t)
	id := generateAEADKey(t, c, softserv.AlgAESGCM)

	var op client.AEADOperation
	if err := c.AEADEncryptSetup(&op, id, softserv.AlgAESGCM); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := c.AEADSetLengths(&op, 0, 100); err != nil {
		t.Fatalf("set lengths: %v", err)
	}
	if err := c.AEADSetNonce(&op, make([]byte, 12)); err != nil {
		t.Fatalf("set nonce: %v", err)
	}
	if _, err := c.AEADUpdate(&op, []byte("only five"), make([]byte, 16)); err != nil {
		t.Fatalf("update: %v", err)
	}
	_, _, err := c.AEADFinish(&op, make([]byte, 16), make([]byte, 16))
	if !errors.Is(err, wire.ErrInvalidArgument) {
		t.Fatalf("undershot declared length err = %v", err)
	}
}

func TestKeyLifecycle(t *testing.T) {
	c := newClient(t)

	id, err := c.ImportKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeAES,
		Usage: wire.UsageEncrypt | wire.UsageDecrypt | wire.UsageExport | wire.UsageCopy,
		Alg:   softserv.AlgAESGCM,
	}, bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("ImportKey: %v", err)
	}

	attrs, err := c.GetKeyAttributes(id)
	if err != nil {
		t.Fatalf("GetKeyAttributes: %v", err)
	}
	if attrs.Type != softserv.KeyTypeAES || attrs.Bits != 256 || attrs.ID != id {
		t.Fatalf("attributes = %+v", attrs)
	}

	material := make([]byte, 32)
	n, err := c.ExportKey(id, material)
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if n != 32 || !bytes.Equal(material, bytes.Repeat([]byte{7}, 32)) {
		t.Fatalf("exported material mismatch")
	}

	// Open resolves an existing id, and fails for unknown ones.
	if got, err := c.OpenKey(id); err != nil || got != id {
		t.Fatalf("OpenKey: %v %v", got, err)
	}
	if _, err := c.OpenKey(9999); !errors.Is(err, wire.ErrDoesNotExist) {
		t.Fatalf("OpenKey unknown err = %v", err)
	}

	// Copy keeps the material under a new id.
	dup, err := c.CopyKey(id, wire.KeyAttributes{
		Type:  softserv.KeyTypeAES,
		Usage: wire.UsageExport,
	})
	if err != nil {
		t.Fatalf("CopyKey: %v", err)
	}
	if dup == id {
		t.Fatalf("copy returned the same id")
	}
	dupMaterial := make([]byte, 32)
	if _, err := c.ExportKey(dup, dupMaterial); err != nil {
		t.Fatalf("ExportKey copy: %v", err)
	}
	if !bytes.Equal(dupMaterial, material) {
		t.Fatalf("copied material differs")
	}

	if err := c.DestroyKey(id); err != nil {
		t.Fatalf("DestroyKey: %v", err)
	}
	if _, err := c.GetKeyAttributes(id); !errors.Is(err, wire.ErrInvalidHandle) {
		t.Fatalf("destroyed key err = %v", err)
	}
	// The copy survives its source.
	if _, err := c.GetKeyAttributes(dup); err != nil {
		t.Fatalf("copy gone after destroying source: %v", err)
	}
}

func TestKeyPolicyEnforced(t *testing.T) {
	c := newClient(t)
	id, err := c.ImportKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeAES,
		Usage: wire.UsageEncrypt,
		Alg:   softserv.AlgAESGCM,
	}, bytes.Repeat([]byte{1}, 32))
	if err != nil {
		t.Fatalf("ImportKey: %v", err)
	}

	_, err = c.ExportKey(id, make([]byte, 32))
	if wire.StatusOf(err) != wire.StatusNotPermitted {
		t.Fatalf("export without policy: %v", err)
	}
	_, err = c.CopyKey(id, wire.KeyAttributes{Type: softserv.KeyTypeAES})
	if wire.StatusOf(err) != wire.StatusNotPermitted {
		t.Fatalf("copy without policy: %v", err)
	}
	_, err = c.AEADDecrypt(id, softserv.AlgAESGCM, make([]byte, 12), nil, make([]byte, 32), make([]byte, 16))
	if wire.StatusOf(err) != wire.StatusNotPermitted {
		t.Fatalf("decrypt without policy: %v", err)
	}
}

func TestImportExplicitID(t *testing.T) {
	c := newClient(t)
	attrs := wire.KeyAttributes{
		Type:     softserv.KeyTypeRaw,
		Lifetime: wire.LifetimePersistent,
		Usage:    wire.UsageExport,
		ID:       4242,
	}
	id, err := c.ImportKey(attrs, []byte("opaque material"))
	if err != nil {
		t.Fatalf("ImportKey: %v", err)
	}
	if id != 4242 {
		t.Fatalf("id = %d, want 4242", id)
	}
	_, err = c.ImportKey(attrs, []byte("other"))
	if wire.StatusOf(err) != wire.StatusAlreadyExists {
		t.Fatalf("conflicting id err = %v", err)
	}
}

func TestSignVerifyEd25519(t *testing.T) {
	c := newClient(t)
	seed := bytes.Repeat([]byte{9}, ed25519.SeedSize)
	id, err := c.ImportKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeEd25519KeyPair,
		Bits:  256,
		Usage: wire.UsageSignMessage | wire.UsageVerifyMessage | wire.UsageExport,
		Alg:   softserv.AlgEd25519,
	}, seed)
	if err != nil {
		t.Fatalf("ImportKey: %v", err)
	}

	msg := []byte("signed message")
	sig := make([]byte, ed25519.SignatureSize)
	n, err := c.SignMessage(id, softserv.AlgEd25519, msg, sig)
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	if n != ed25519.SignatureSize {
		t.Fatalf("signature length = %d", n)
	}

	// The signature checks out against the exported public key.
	pub := make([]byte, ed25519.PublicKeySize)
	pn, err := c.ExportPublicKey(id, pub)
	if err != nil {
		t.Fatalf("ExportPublicKey: %v", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub[:pn]), msg, sig[:n]) {
		t.Fatalf("signature invalid against exported public key")
	}

	if err := c.VerifyMessage(id, softserv.AlgEd25519, msg, sig[:n]); err != nil {
		t.Fatalf("VerifyMessage: %v", err)
	}
	sig[0] ^= 1
	if err := c.VerifyMessage(id, softserv.AlgEd25519, msg, sig[:n]); !errors.Is(err, wire.ErrInvalidSignature) {
		t.Fatalf("tampered signature err = %v", err)
	}
}

func TestSignVerifyDilithium3(t *testing.T) {
	c := newClient(t)
	id, err := c.GenerateKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeDilithium3KeyPair,
		Usage: wire.UsageSignMessage | wire.UsageVerifyMessage,
		Alg:   softserv.AlgDilithium3,
	})
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	msg := []byte("post-quantum signed")
	sig := make([]byte, mode3.SignatureSize)
	n, err := c.SignMessage(id, softserv.AlgDilithium3, msg, sig)
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	if n != mode3.SignatureSize {
		t.Fatalf("signature length = %d, want %d", n, mode3.SignatureSize)
	}
	if err := c.VerifyMessage(id, softserv.AlgDilithium3, msg, sig[:n]); err != nil {
		t.Fatalf("VerifyMessage: %v", err)
	}
	if err := c.VerifyMessage(id, softserv.AlgDilithium3, []byte("other"), sig[:n]); !errors.Is(err, wire.ErrInvalidSignature) {
		t.Fatalf("wrong message err = %v", err)
	}
}

func TestSignHashUsageSeparate(t *testing.T) {
	c := newClient(t)
	id, err := c.GenerateKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeEd25519KeyPair,
		Usage: wire.UsageSignMessage,
		Alg:   softserv.AlgEd25519,
	})
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	digest := sha256.Sum256([]byte("m"))
	_, err = c.SignHash(id, softserv.AlgEd25519, digest[:], make([]byte, 64))
	if wire.StatusOf(err) != wire.StatusNotPermitted {
		t.Fatalf("sign-hash without policy: %v", err)
	}
}

func TestRSAOAEPRoundTrip(t *testing.T) {
	c := newClient(t)
	id, err := c.GenerateKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeRSAKeyPair,
		Bits:  2048,
		Usage: wire.UsageEncrypt | wire.UsageDecrypt,
		Alg:   softserv.AlgRSAOAEPSHA256,
	})
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	msg := []byte("wrapped secret")
	ciphertext := make([]byte, 256)
	n, err := c.AsymmetricEncrypt(id, softserv.AlgRSAOAEPSHA256, msg, nil, ciphertext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if n != 256 {
		t.Fatalf("ciphertext length = %d", n)
	}
	recovered := make([]byte, len(msg))
	m, err := c.AsymmetricDecrypt(id, softserv.AlgRSAOAEPSHA256, ciphertext[:n], nil, recovered)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(recovered[:m], msg) {
		t.Fatalf("round trip mismatch")
	}

	// Salted encryption requires the matching salt at decryption.
	salt := []byte("label")
	n, err = c.AsymmetricEncrypt(id, softserv.AlgRSAOAEPSHA256, msg, salt, ciphertext)
	if err != nil {
		t.Fatalf("salted encrypt: %v", err)
	}
	if _, err := c.AsymmetricDecrypt(id, softserv.AlgRSAOAEPSHA256, ciphertext[:n], salt, recovered); err != nil {
		t.Fatalf("salted decrypt: %v", err)
	}
	_, err = c.AsymmetricDecrypt(id, softserv.AlgRSAOAEPSHA256, ciphertext[:n], nil, recovered)
	if !errors.Is(err, wire.ErrInvalidPadding) {
		t.Fatalf("wrong salt err = %v, want ErrInvalidPadding", err)
	}
}

func TestKeyDerivationMatchesHKDF(t *testing.T) {
	c := newClient(t)
	secret := []byte("input keying material")
	salt := []byte("salt")
	info := []byte("context")

	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if got, err := c.KeyDerivationGetCapacity(&op); err != nil || got != 255*32 {
		t.Fatalf("initial capacity = %d err = %v", got, err)
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSalt, salt); err != nil {
		t.Fatalf("salt: %v", err)
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSecret, secret); err != nil {
		t.Fatalf("secret: %v", err)
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepInfo, info); err != nil {
		t.Fatalf("info: %v", err)
	}

	got := make([]byte, 42)
	if err := c.KeyDerivationOutputBytes(&op, got); err != nil {
		t.Fatalf("output: %v", err)
	}
	want := make([]byte, 42)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), want); err != nil {
		t.Fatalf("reference hkdf: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("derived bytes differ from reference")
	}

	// Successive reads continue the stream.
	got2 := make([]byte, 10)
	if err := c.KeyDerivationOutputBytes(&op, got2); err != nil {
		t.Fatalf("second output: %v", err)
	}
	want2 := make([]byte, 10)
	ref := hkdf.New(sha256.New, secret, salt, info)
	if _, err := io.ReadFull(ref, make([]byte, 42)); err != nil {
		t.Fatalf("reference hkdf: %v", err)
	}
	if _, err := io.ReadFull(ref, want2); err != nil {
		t.Fatalf("reference hkdf: %v", err)
	}
	if !bytes.Equal(got2, want2) {
		t.Fatalf("stream continuation differs from reference")
	}

	if got, err := c.KeyDerivationGetCapacity(&op); err != nil || got != 255*32-52 {
		t.Fatalf("capacity after reads = %d err = %v", got, err)
	}
	if err := c.KeyDerivationAbort(&op); err != nil {
		t.Fatalf("abort: %v", err)
	}
}

func TestKeyDerivationCapacity(t *testing.T) {
	c := newClient(t)
	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := c.KeyDerivationSetCapacity(&op, 16); err != nil {
		t.Fatalf("set capacity: %v", err)
	}
	// Growing it back is rejected.
	if err := c.KeyDerivationSetCapacity(&op, 32); !errors.Is(err, wire.ErrInvalidArgument) {
		t.Fatalf("grow capacity err = %v", err)
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSecret, []byte("ikm")); err != nil {
		t.Fatalf("secret: %v", err)
	}
	if err := c.KeyDerivationOutputBytes(&op, make([]byte, 16)); err != nil {
		t.Fatalf("output within capacity: %v", err)
	}
	err := c.KeyDerivationOutputBytes(&op, make([]byte, 1))
	if wire.StatusOf(err) != wire.StatusInsufficientData {
		t.Fatalf("exhausted capacity err = %v", err)
	}
}

func TestKeyDerivationInputOrder(t *testing.T) {
	c := newClient(t)
	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	// Info before secret is out of order.
	if err := c.KeyDerivationInputBytes(&op, softserv.StepInfo, []byte("i")); !errors.Is(err, wire.ErrBadState) {
		t.Fatalf("early info err = %v", err)
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSecret, []byte("s")); err != nil {
		t.Fatalf("secret: %v", err)
	}
	// A second secret is rejected.
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSecret, []byte("s2")); !errors.Is(err, wire.ErrBadState) {
		t.Fatalf("double secret err = %v", err)
	}
	// Salt after secret is rejected.
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSalt, []byte("x")); !errors.Is(err, wire.ErrBadState) {
		t.Fatalf("late salt err = %v", err)
	}
}

func TestKeyDerivationOutputKey(t *testing.T) {
	c := newClient(t)
	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSecret, []byte("root key material")); err != nil {
		t.Fatalf("secret: %v", err)
	}
	id, err := c.KeyDerivationOutputKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeAES,
		Bits:  256,
		Usage: wire.UsageEncrypt | wire.UsageDecrypt,
		Alg:   softserv.AlgAESGCM,
	}, &op)
	if err != nil {
		t.Fatalf("output key: %v", err)
	}

	// The derived key is immediately usable.
	nonce := make([]byte, 12)
	ciphertext := make([]byte, 2+16)
	if _, err := c.AEADEncrypt(id, softserv.AlgAESGCM, nonce, nil, []byte("ok"), ciphertext); err != nil {
		t.Fatalf("derived key unusable: %v", err)
	}
}

func TestKeyDerivationInputKey(t *testing.T) {
	c := newClient(t)
	ikm, err := c.ImportKey(wire.KeyAttributes{
		Type:  softserv.KeyTypeDerive,
		Usage: wire.UsageDerive,
	}, []byte("stored secret"))
	if err != nil {
		t.Fatalf("ImportKey: %v", err)
	}

	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := c.KeyDerivationInputKey(&op, softserv.StepSecret, ikm); err != nil {
		t.Fatalf("input key: %v", err)
	}
	got := make([]byte, 32)
	if err := c.KeyDerivationOutputBytes(&op, got); err != nil {
		t.Fatalf("output: %v", err)
	}
	want := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte("stored secret"), nil, nil), want); err != nil {
		t.Fatalf("reference hkdf: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("derived bytes differ from reference")
	}
}

func TestX25519Agreement(t *testing.T) {
	c := newClient(t)
	newPair := func() (wire.KeyID, []byte) {
		id, err := c.GenerateKey(wire.KeyAttributes{
			Type:  softserv.KeyTypeX25519KeyPair,
			Usage: wire.UsageDerive | wire.UsageExport,
			Alg:   softserv.AlgECDHX25519,
		})
		if err != nil {
			t.Fatalf("GenerateKey: %v", err)
		}
		pub := make([]byte, 32)
		n, err := c.ExportPublicKey(id, pub)
		if err != nil {
			t.Fatalf("ExportPublicKey: %v", err)
		}
		return id, pub[:n]
	}
	alice, alicePub := newPair()
	bob, bobPub := newPair()

	sharedA := make([]byte, 32)
	na, err := c.RawKeyAgreement(softserv.AlgECDHX25519, alice, bobPub, sharedA)
	if err != nil {
		t.Fatalf("alice agreement: %v", err)
	}
	sharedB := make([]byte, 32)
	nb, err := c.RawKeyAgreement(softserv.AlgECDHX25519, bob, alicePub, sharedB)
	if err != nil {
		t.Fatalf("bob agreement: %v", err)
	}
	if na != nb || !bytes.Equal(sharedA[:na], sharedB[:nb]) {
		t.Fatalf("agreement results differ")
	}

	// The same secret reached through the derivation interface matches a
	// local computation.
	alicePriv := make([]byte, 32)
	n, err := c.ExportKey(alice, alicePriv)
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	priv, err := ecdh.X25519().NewPrivateKey(alicePriv[:n])
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	peer, err := ecdh.X25519().NewPublicKey(bobPub)
	if err != nil {
		t.Fatalf("NewPublicKey: %v", err)
	}
	want, err := priv.ECDH(peer)
	if err != nil {
		t.Fatalf("reference ECDH: %v", err)
	}
	if !bytes.Equal(sharedA[:na], want) {
		t.Fatalf("shared secret differs from reference")
	}

	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := c.KeyDerivationKeyAgreement(&op, softserv.StepSecret, alice, bobPub); err != nil {
		t.Fatalf("key agreement input: %v", err)
	}
	got := make([]byte, 32)
	if err := c.KeyDerivationOutputBytes(&op, got); err != nil {
		t.Fatalf("output: %v", err)
	}
	ref := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, want, nil, nil), ref); err != nil {
		t.Fatalf("reference hkdf: %v", err)
	}
	if !bytes.Equal(got, ref) {
		t.Fatalf("derived agreement bytes differ from reference")
	}
}
