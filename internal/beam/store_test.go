package beam

import "testing"

func TestEnsureRoomIsIdempotent(t *testing.T) {
	store := NewStore()

	first := store.EnsureRoom(GroupHostedKey(), ModeGroup, true, "guest-1")
	if len(first.Participants) != 1 || first.Participants[0] != "guest-1" {
		t.Fatalf("participants after first ensure = %v", first.Participants)
	}

	// Same guest again: no duplicate participant.
	again := store.EnsureRoom(GroupHostedKey(), ModeGroup, true, "guest-1")
	if len(again.Participants) != 1 {
		t.Fatalf("participants after repeat ensure = %v", again.Participants)
	}

	// A second guest joins the same room.
	second := store.EnsureRoom(GroupHostedKey(), ModeGroup, true, "guest-2")
	if len(second.Participants) != 2 {
		t.Fatalf("participants after second guest = %v", second.Participants)
	}
	if len(store.Snapshot()) != 1 {
		t.Fatalf("room count = %d, want 1", len(store.Snapshot()))
	}
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	store := NewStore()
	key := DirectKey("peer-a")
	store.EnsureRoom(key, ModeDirect, false, "peer-a")

	for _, content := range []string{"one", "two", "three"} {
		if !store.AppendMessage(key, NewMessage("me", "Me", content, MessageText)) {
			t.Fatalf("append %q failed", content)
		}
	}

	room, ok := store.Room(key)
	if !ok {
		t.Fatal("room missing after appends")
	}
	if len(room.Messages) != 3 {
		t.Fatalf("message count = %d, want 3", len(room.Messages))
	}
	for i, want := range []string{"one", "two", "three"} {
		if room.Messages[i].Content != want {
			t.Fatalf("message[%d] = %q, want %q", i, room.Messages[i].Content, want)
		}
	}
}

func TestAppendToMissingRoomIsDropped(t *testing.T) {
	store := NewStore()
	if store.AppendMessage(DirectKey("ghost"), NewMessage("me", "Me", "hi", MessageText)) {
		t.Fatal("append to missing room must report a drop")
	}
}

func TestRemoveClearsActivePointer(t *testing.T) {
	store := NewStore()
	key := DirectKey("peer-a")
	store.EnsureRoom(key, ModeDirect, false, "peer-a")
	store.SetActive(key)

	if _, ok := store.Remove(key); !ok {
		t.Fatal("remove of existing room failed")
	}
	if _, ok := store.Active(); ok {
		t.Fatal("active pointer survived removal of the active room")
	}

	// Writes after removal are stale and must be dropped.
	if store.AppendMessage(key, NewMessage("me", "Me", "late", MessageText)) {
		t.Fatal("append after removal must be dropped")
	}
}

func TestRemoveKeepsUnrelatedActiveRoom(t *testing.T) {
	store := NewStore()
	keep := DirectKey("peer-a")
	drop := DirectKey("peer-b")
	store.EnsureRoom(keep, ModeDirect, false, "peer-a")
	store.EnsureRoom(drop, ModeDirect, false, "peer-b")
	store.SetActive(keep)

	store.Remove(drop)

	active, ok := store.Active()
	if !ok || active != keep {
		t.Fatalf("active after unrelated removal = %v, %v", active, ok)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	store := NewStore()
	key := DirectKey("peer-a")
	store.EnsureRoom(key, ModeDirect, false, "peer-a")
	store.AppendMessage(key, NewMessage("me", "Me", "hi", MessageText))

	room, _ := store.Room(key)
	room.Messages[0].Content = "mutated"
	room.Participants[0] = "mutated"

	fresh, _ := store.Room(key)
	if fresh.Messages[0].Content != "hi" || fresh.Participants[0] != "peer-a" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}
