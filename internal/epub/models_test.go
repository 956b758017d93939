package epub

import (
	"testing"
)

func TestGenerate_FreshPair(t *testing.T) {
	book := &Book{}
	id, href := book.Generate("titlepage", "titlepage.xhtml")
	if id != "titlepage" || href != "titlepage.xhtml" {
		t.Errorf("Generate() = (%q, %q), want (titlepage, titlepage.xhtml)", id, href)
	}
}

func TestGenerate_SkipsTakenIDs(t *testing.T) {
	book := &Book{}
	book.Add(&ManifestItem{ID: "titlepage", Href: "other.xhtml"})
	book.Add(&ManifestItem{ID: "x", Href: "titlepage1.xhtml"})

	id, href := book.Generate("titlepage", "titlepage.xhtml")
	if id != "titlepage2" || href != "titlepage2.xhtml" {
		t.Errorf("Generate() = (%q, %q), want (titlepage2, titlepage2.xhtml)", id, href)
	}
}

func TestGenerate_HrefCollision(t *testing.T) {
	book := &Book{}
	book.Add(&ManifestItem{ID: "page", Href: "titlepage.xhtml"})

	id, href := book.Generate("titlepage", "titlepage.xhtml")
	if id != "titlepage1" || href != "titlepage1.xhtml" {
		t.Errorf("Generate() = (%q, %q), want (titlepage1, titlepage1.xhtml)", id, href)
	}
}

func TestAdd_KeepsOrder(t *testing.T) {
	book := &Book{}
	book.Add(&ManifestItem{ID: "a", Href: "a.xhtml"})
	book.Add(&ManifestItem{ID: "b", Href: "b.xhtml"})
	book.Add(&ManifestItem{ID: "a", Href: "a2.xhtml"}) // replace

	if len(book.ManifestOrder) != 2 {
		t.Fatalf("ManifestOrder = %v, want 2 entries", book.ManifestOrder)
	}
	if book.ManifestOrder[0] != "a" || book.ManifestOrder[1] != "b" {
		t.Errorf("ManifestOrder = %v, want [a b]", book.ManifestOrder)
	}
	if book.Manifest["a"].Href != "a2.xhtml" {
		t.Errorf("replaced item href = %q, want a2.xhtml", book.Manifest["a"].Href)
	}
}

func TestItemByHref(t *testing.T) {
	book := &Book{}
	book.Add(&ManifestItem{ID: "c1", Href: "text/chapter1.xhtml"})

	if item := book.ItemByHref("text/chapter1.xhtml"); item == nil || item.ID != "c1" {
		t.Errorf("ItemByHref() = %+v, want c1", item)
	}
	if item := book.ItemByHref("text/chapter1.xhtml#section2"); item == nil || item.ID != "c1" {
		t.Errorf("ItemByHref() with fragment = %+v, want c1", item)
	}
	if item := book.ItemByHref("./text/chapter1.xhtml"); item == nil || item.ID != "c1" {
		t.Errorf("ItemByHref() with ./ prefix = %+v, want c1", item)
	}
	if item := book.ItemByHref("missing.xhtml"); item != nil {
		t.Errorf("ItemByHref(missing) = %+v, want nil", item)
	}
}

func TestInsertSpineItem(t *testing.T) {
	book := &Book{Spine: []SpineItem{
		{IDRef: "c1", Linear: true},
		{IDRef: "c2", Linear: true},
	}}

	book.InsertSpineItem(0, "tp", true)

	want := []string{"tp", "c1", "c2"}
	if len(book.Spine) != len(want) {
		t.Fatalf("spine has %d entries, want %d", len(book.Spine), len(want))
	}
	for i, idref := range want {
		if book.Spine[i].IDRef != idref {
			t.Errorf("spine[%d] = %q, want %q", i, book.Spine[i].IDRef, idref)
		}
	}
}

func TestInsertSpineItem_ClampsIndex(t *testing.T) {
	book := &Book{Spine: []SpineItem{{IDRef: "c1", Linear: true}}}

	book.InsertSpineItem(99, "end", false)
	if book.Spine[len(book.Spine)-1].IDRef != "end" {
		t.Errorf("spine = %+v, want end appended", book.Spine)
	}
	book.InsertSpineItem(-5, "start", true)
	if book.Spine[0].IDRef != "start" {
		t.Errorf("spine = %+v, want start prepended", book.Spine)
	}
}

func TestGuideRefs(t *testing.T) {
	book := &Book{}
	if book.HasGuideRef("cover") {
		t.Error("HasGuideRef(cover) = true on empty guide")
	}

	book.AddGuideRef("cover", "Title Page", "a")
	ref, ok := book.GuideRef("cover")
	if !ok {
		t.Fatal("GuideRef(cover) not found after Add")
	}
	if ref.Title != "Title Page" || ref.Href != "a" {
		t.Errorf("GuideRef(cover) = %+v, want Title Page / a", ref)
	}

	// Case-insensitive lookup.
	if !book.HasGuideRef("Cover") {
		t.Error("HasGuideRef(Cover) = false, want case-insensitive match")
	}

	book.SetGuideHref("cover", "titlepage.xhtml")
	ref, _ = book.GuideRef("cover")
	if ref.Href != "titlepage.xhtml" {
		t.Errorf("guide cover href = %q, want titlepage.xhtml", ref.Href)
	}
}

func TestResourcePath(t *testing.T) {
	book := &Book{OPFDir: "OEBPS"}
	if got := book.ResourcePath("images/cover.jpg"); got != "OEBPS/images/cover.jpg" {
		t.Errorf("ResourcePath() = %q, want OEBPS/images/cover.jpg", got)
	}

	root := &Book{}
	if got := root.ResourcePath("images/cover.jpg"); got != "images/cover.jpg" {
		t.Errorf("ResourcePath() = %q, want images/cover.jpg", got)
	}
}
