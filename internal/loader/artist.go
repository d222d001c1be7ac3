package loader

import (
	"net/url"
	"strings"

	"github.com/papapumpkin/lineup/internal/convert"
	"github.com/papapumpkin/lineup/internal/filetree"
	"github.com/papapumpkin/lineup/internal/model"
)

// artistConversion maps artists/<Name>.md to an Artist. The file name is the
// artist's name; the body is the bio.
func artistConversion() convert.Conversion[filetree.Leaf, model.Artist] {
	md := convert.Markdown[artistMatter]()
	return convert.Func(
		func(leaf filetree.Leaf) (model.Artist, error) {
			m, err := md.Apply(leaf.Data)
			if err != nil {
				return model.Artist{}, convert.WithPath(err, leaf.Path)
			}
			a := model.Artist{Name: leaf.Name, Bio: m.Body}
			if fm := m.FrontMatter; fm != nil {
				a.ImageURL = fm.ImageURL
				a.LogoURL = fm.LogoURL
				a.Kind = fm.Kind
				for _, l := range fm.Links {
					a.Links = append(a.Links, model.Link{URL: l.URL, Type: linkType(l)})
				}
			}
			return a, nil
		},
		func(a model.Artist) (filetree.Leaf, error) {
			fm := artistMatter{ImageURL: a.ImageURL, LogoURL: a.LogoURL, Kind: a.Kind}
			for _, l := range a.Links {
				fm.Links = append(fm.Links, linkFile{URL: l.URL, Type: string(l.Type)})
			}
			m := convert.Matter[artistMatter]{Dialect: convert.DialectYAML, Body: a.Bio}
			if fm.ImageURL != "" || fm.LogoURL != "" || fm.Kind != "" || len(fm.Links) > 0 {
				m.FrontMatter = &fm
			}
			data, err := md.Unapply(m)
			return filetree.Leaf{Name: a.Name, Data: data}, err
		},
	)
}

// linkType returns the declared type, or infers one from the URL host.
func linkType(l linkFile) model.LinkType {
	if t := strings.TrimSpace(l.Type); t != "" {
		return model.LinkType(strings.ToLower(t))
	}
	return InferLinkType(l.URL)
}

// InferLinkType guesses the platform of a link from its host name.
func InferLinkType(raw string) model.LinkType {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return model.LinkWebsite
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case hostIs(host, "spotify.com"):
		return model.LinkSpotify
	case hostIs(host, "soundcloud.com"):
		return model.LinkSoundCloud
	case hostIs(host, "instagram.com"):
		return model.LinkInstagram
	case hostIs(host, "facebook.com"), hostIs(host, "fb.com"):
		return model.LinkFacebook
	case hostIs(host, "youtube.com"), hostIs(host, "youtu.be"):
		return model.LinkYouTube
	case hostIs(host, "bandcamp.com"):
		return model.LinkBandcamp
	case hostIs(host, "tiktok.com"):
		return model.LinkTikTok
	case hostIs(host, "x.com"), hostIs(host, "twitter.com"):
		return model.LinkX
	default:
		return model.LinkWebsite
	}
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
