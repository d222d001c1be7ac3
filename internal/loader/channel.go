package loader

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/papapumpkin/lineup/internal/convert"
	"github.com/papapumpkin/lineup/internal/filetree"
	"github.com/papapumpkin/lineup/internal/model"
)

type channelSource struct {
	Path string
	File channelFile
}

// postSource is a decoded post whose timestamp still needs the event's
// location.
type postSource struct {
	Title  string
	Path   string
	Matter convert.Matter[postMatter]
}

type channelTree = filetree.Tuple2[channelSource, []postSource]

func channelNode() filetree.Node[channelTree] {
	return filetree.Seq2(
		filetree.Map(filetree.File("channel-info", "yaml", "yml"), channelSourceConversion()),
		filetree.Map(filetree.ManyFiles("md"), convert.Each(postSourceConversion())),
	)
}

func channelSourceConversion() convert.Conversion[filetree.Leaf, channelSource] {
	y := convert.YAMLFile[channelFile]()
	return convert.Func(
		func(leaf filetree.Leaf) (channelSource, error) {
			f, err := y.Apply(leaf.Data)
			if err != nil {
				return channelSource{}, convert.WithPath(err, leaf.Path)
			}
			return channelSource{Path: leaf.Path, File: f}, nil
		},
		func(s channelSource) (filetree.Leaf, error) {
			data, err := y.Unapply(s.File)
			return filetree.Leaf{Data: data}, err
		},
	)
}

func postSourceConversion() convert.Conversion[filetree.Leaf, postSource] {
	md := convert.Markdown[postMatter]()
	return convert.Func(
		func(leaf filetree.Leaf) (postSource, error) {
			m, err := md.Apply(leaf.Data)
			if err != nil {
				return postSource{}, convert.WithPath(err, leaf.Path)
			}
			return postSource{Title: leaf.Name, Path: leaf.Path, Matter: m}, nil
		},
		func(p postSource) (filetree.Leaf, error) {
			data, err := md.Unapply(p.Matter)
			return filetree.Leaf{Name: p.Title, Data: data}, err
		},
	)
}

// buildChannel turns the channel directory at position index (in name order)
// into a ChannelConfiguration.
func buildChannel(index int, n filetree.Named[channelTree], loc *time.Location) (model.ChannelConfiguration, error) {
	f := n.Value.V1.File
	info := model.Channel{
		Name:                     strings.TrimSpace(f.Name),
		Description:              strings.TrimSpace(f.Description),
		IconImageURL:             f.IconImageURL,
		HeaderImageURL:           f.HeaderImageURL,
		SortIndex:                index,
		DefaultNotificationState: model.Unsubscribed,
	}
	if info.Name == "" {
		info.Name = n.Name
	}
	if f.SortIndex != nil {
		info.SortIndex = *f.SortIndex
	}
	if s := strings.TrimSpace(f.DefaultNotificationState); s != "" {
		info.DefaultNotificationState = model.NotificationState(strings.ToLower(s))
	}

	cc := model.ChannelConfiguration{Info: info}
	for _, ps := range n.Value.V2 {
		post := model.Post{Title: ps.Title}
		if ps.Matter.Body != nil {
			post.Contents = *ps.Matter.Body
		}
		if fm := ps.Matter.FrontMatter; fm != nil {
			post.HeaderImageURL = fm.HeaderImageURL
			post.IsPinned = fm.IsPinned
			ts, err := parseTimestamp(fm.Timestamp, loc)
			if err != nil {
				return model.ChannelConfiguration{}, convert.WithPath(convert.Decodef("timestamp: %w", err), ps.Path)
			}
			post.Timestamp = ts
		}
		cc.Posts = append(cc.Posts, post)
	}
	return cc, nil
}

// parseTimestamp coerces a front matter timestamp. A bare date is midnight
// in loc and a zone-less date-time is read in loc.
func parseTimestamp(v scalar, loc *time.Location) (*time.Time, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil, nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func unbuildChannel(cc model.ChannelConfiguration) filetree.Named[channelTree] {
	idx := cc.Info.SortIndex
	f := channelFile{
		Name:                     cc.Info.Name,
		Description:              cc.Info.Description,
		IconImageURL:             cc.Info.IconImageURL,
		HeaderImageURL:           cc.Info.HeaderImageURL,
		SortIndex:                &idx,
		DefaultNotificationState: string(cc.Info.DefaultNotificationState),
	}
	posts := make([]postSource, 0, len(cc.Posts))
	for _, p := range cc.Posts {
		m := convert.Matter[postMatter]{Dialect: convert.DialectYAML}
		if p.Contents != "" {
			contents := p.Contents
			m.Body = &contents
		}
		fm := postMatter{HeaderImageURL: p.HeaderImageURL, IsPinned: p.IsPinned}
		if p.Timestamp != nil {
			fm.Timestamp = scalar(p.Timestamp.Format(time.RFC3339))
		}
		if fm.HeaderImageURL != "" || fm.IsPinned || fm.Timestamp != "" {
			m.FrontMatter = &fm
		}
		posts = append(posts, postSource{Title: p.Title, Matter: m})
	}
	return filetree.Named[channelTree]{
		Name:  cc.Info.Name,
		Value: channelTree{V1: channelSource{File: f}, V2: posts},
	}
}
