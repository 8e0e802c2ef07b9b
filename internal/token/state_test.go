package token

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOwnerIgnoresCase(t *testing.T) {
	upper := common.HexToAddress("0xABCDEF0123456789ABCDEF0123456789ABCDEF01")
	lower := common.HexToAddress("0xabcdef0123456789abcdef0123456789abcdef01")

	conn := Connection{Connected: true, Address: upper}
	assert.True(t, isOwner(conn, Metadata{Loaded: true, Owner: lower}))
	assert.False(t, isOwner(conn, Metadata{Loaded: true, Owner: common.HexToAddress("0x01")}))
}

func TestIsOwnerUnknownSides(t *testing.T) {
	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.False(t, isOwner(Connection{}, Metadata{Loaded: true, Owner: addr}), "disconnected")
	assert.False(t, isOwner(Connection{Connected: true, Address: addr}, Metadata{}), "metadata not loaded")
	assert.False(t, isOwner(Connection{Connected: true}, Metadata{Loaded: true}), "zero owner")
}

func TestStoreRecomputesIsOwner(t *testing.T) {
	st := newStore("localhost", common.Address{})
	owner := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	st.update(func(s *Snapshot) { s.Metadata = Metadata{Loaded: true, Owner: owner} })
	assert.False(t, st.get().IsOwner)

	snap := st.update(func(s *Snapshot) { s.Connection = Connection{Connected: true, Address: owner} })
	assert.True(t, snap.IsOwner)

	snap = st.update(func(s *Snapshot) { s.Connection.Connected = false })
	assert.False(t, snap.IsOwner)
	assert.Equal(t, common.Address{}, snap.Connection.Address, "address cleared on disconnect")
}

func TestStoreVersionIncreases(t *testing.T) {
	st := newStore("", common.Address{})
	a := st.update(func(*Snapshot) {})
	b := st.update(func(*Snapshot) {})
	assert.Greater(t, b.Version, a.Version)
}

func TestStoreTransitionIgnoresStaleTask(t *testing.T) {
	st := newStore("", common.Address{})
	st.begin(1, Burn("1"))
	st.begin(2, Burn("2"))

	ok := st.transition(1, func(s *Status) { s.Phase = PhaseFailed })
	assert.False(t, ok)
	assert.Equal(t, PhasePending, st.get().Status.Phase)
	assert.Equal(t, uint64(2), st.get().Status.TaskID)

	ok = st.transition(2, func(s *Status) { s.Phase = PhaseConfirmed })
	assert.True(t, ok)
	assert.Equal(t, PhaseConfirmed, st.get().Status.Phase)
}

func TestStoreSubscribeLatestWins(t *testing.T) {
	st := newStore("", common.Address{})
	ch, cancel := st.subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, uint64(0), first.Version)

	st.update(func(s *Snapshot) { s.Network = "a" })
	st.update(func(s *Snapshot) { s.Network = "b" })

	got := <-ch
	assert.Equal(t, "b", got.Network)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected snapshot %+v", extra)
	default:
	}
}

func TestStoreCloseClosesSubscriptions(t *testing.T) {
	st := newStore("", common.Address{})
	ch, cancel := st.subscribe()
	<-ch
	st.close()
	_, ok := <-ch
	assert.False(t, ok)
	cancel() // after close must not panic

	late, _ := st.subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	hash := common.HexToHash("0x01")
	assert.Equal(t, "Idle", Status{}.String())
	assert.Contains(t, Status{Phase: PhasePending}.String(), "approval")
	assert.Equal(t, "Pending: "+hash.Hex(), Status{Phase: PhasePending, Hash: hash}.String())
	assert.Equal(t, "Confirmed: "+hash.Hex(), Status{Phase: PhaseConfirmed, Hash: hash}.String())
	assert.Equal(t, "Failed (UserRejected): denied",
		Status{Phase: PhaseFailed, Kind: KindUserRejected, Reason: "denied"}.String())
}

func TestIntentValidate(t *testing.T) {
	p, err := Transfer(" 0x000000000000000000000000000000000000dEaD ", "1.5").validate()
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", p.value.String())
	assert.Equal(t, common.HexToAddress("0x000000000000000000000000000000000000dEaD"), p.to)

	_, err = Transfer("0x1234", "1").validate()
	assert.Equal(t, KindInvalidAddress, KindOf(err))

	for _, amount := range []string{"", "abc", "-1", "1e18", "0.0000000000000000001"} {
		_, err = Burn(amount).validate()
		assert.Equal(t, KindInvalidAmount, KindOf(err), "amount %q", amount)
	}

	_, err = Intent{Action: 99, Amount: "1"}.validate()
	assert.Error(t, err)
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "transfer 1.5 to 0xdead", Transfer("0xdead", "1.5").String())
	assert.Equal(t, "burn 10", Burn("10").String())
	assert.Equal(t, "mint 3", Mint("3").String())
	assert.True(t, ActionMint.OwnerOnly())
	assert.False(t, ActionTransfer.OwnerOnly())
}
