package face

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFace struct {
	id     uint16
	typ    Type
	sent   [][]byte
	closed bool
}

func (f *stubFace) ID() uint16   { return f.id }
func (f *stubFace) Type() Type   { return f.typ }
func (f *stubFace) Send(msg []byte) error {
	f.sent = append(f.sent, msg)
	return nil
}
func (f *stubFace) Close() error {
	f.closed = true
	return nil
}

func stubDialer(dialed *[]key) Dialer {
	return func(id uint16, protocol byte, host string) (Face, error) {
		*dialed = append(*dialed, key{protocol, host})
		return &stubFace{id: id, typ: TypeTCP}, nil
	}
}

func TestResolveFace_DialsOnceAndReusesID(t *testing.T) {
	var dialed []key
	reg := NewRegistry(stubDialer(&dialed))

	id1, err := reg.ResolveFace(1, "10.0.0.1:9896", true)
	require.NoError(t, err)

	id2, err := reg.ResolveFace(1, "10.0.0.1:9896", true)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, dialed, 1)
}

func TestResolveFace_DifferentHostsGetDifferentIDs(t *testing.T) {
	var dialed []key
	reg := NewRegistry(stubDialer(&dialed))

	id1, err := reg.ResolveFace(1, "10.0.0.1:9896", true)
	require.NoError(t, err)
	id2, err := reg.ResolveFace(1, "10.0.0.2:9896", true)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestResolveFace_NoCreateReturnsErrNotFound(t *testing.T) {
	reg := NewRegistry(stubDialer(&[]key{}))

	_, err := reg.ResolveFace(1, "10.0.0.1:9896", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveFace_DialerError(t *testing.T) {
	dialErr := errors.New("boom")
	reg := NewRegistry(func(id uint16, protocol byte, host string) (Face, error) {
		return nil, dialErr
	})

	_, err := reg.ResolveFace(1, "10.0.0.1:9896", true)
	assert.ErrorIs(t, err, dialErr)
}

func TestRemove_ClosesFaceAndForgetsKey(t *testing.T) {
	var dialed []key
	var created *stubFace
	reg := NewRegistry(func(id uint16, protocol byte, host string) (Face, error) {
		created = &stubFace{id: id, typ: TypeTCP}
		dialed = append(dialed, key{protocol, host})
		return created, nil
	})

	id, err := reg.ResolveFace(1, "10.0.0.1:9896", true)
	require.NoError(t, err)

	require.NoError(t, reg.Remove(id))
	assert.True(t, created.closed)
	assert.True(t, reg.IsClosed(id))

	_, ok := reg.Get(id)
	assert.False(t, ok)
}

func TestIsClosed_UnknownIDReportsClosed(t *testing.T) {
	reg := NewRegistry(stubDialer(&[]key{}))
	assert.True(t, reg.IsClosed(999))
}

func TestCloseAll_ClosesEveryFace(t *testing.T) {
	var faces []*stubFace
	reg := NewRegistry(func(id uint16, protocol byte, host string) (Face, error) {
		f := &stubFace{id: id, typ: TypeTCP}
		faces = append(faces, f)
		return f, nil
	})

	_, err := reg.ResolveFace(1, "10.0.0.1:9896", true)
	require.NoError(t, err)
	_, err = reg.ResolveFace(1, "10.0.0.2:9896", true)
	require.NoError(t, err)

	require.NoError(t, reg.CloseAll())
	for _, f := range faces {
		assert.True(t, f.closed)
	}
}
