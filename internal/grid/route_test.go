package grid

import (
	"testing"

	"github.com/okian/medalgrid/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGroupPath(t *testing.T) {
	Convey("Given a tree grouped by country and sport", t, func() {
		root := rootNode()
		norway := groupNode(root, "Norway")
		sweden := groupNode(root, "Sweden")
		biathlon := groupNode(norway, "Biathlon")
		skiing := groupNode(norway, "Cross Country Skiing")
		leaf := leafNode(biathlon, model.Record{ID: 1})
		_ = leafNode(skiing, model.Record{ID: 2})
		_ = leafNode(sweden, model.Record{ID: 3})

		Convey("When the path of a nested leaf is computed", func() {
			path := GroupPath(leaf)

			Convey("Then it lists the ancestors' keys from the top", func() {
				So(path, ShouldResemble, []string{"Norway", "Biathlon"})
			})
		})

		Convey("When the path of a group node is computed", func() {
			Convey("Then it ends with the node's own key", func() {
				So(GroupPath(skiing), ShouldResemble, []string{"Norway", "Cross Country Skiing"})
			})
		})

		Convey("When siblings are added in another order", func() {
			other := rootNode()
			_ = groupNode(other, "Sweden")
			n2 := groupNode(other, "Norway")
			b2 := groupNode(n2, "Biathlon")
			leaf2 := leafNode(b2, model.Record{ID: 1})

			Convey("Then the path is the same", func() {
				So(GroupPath(leaf2), ShouldResemble, GroupPath(leaf))
			})
		})
	})

	Convey("Given a flat tree", t, func() {
		leaf := leafNode(rootNode(), model.Record{ID: 1})

		Convey("Then a top level leaf has an empty path", func() {
			So(GroupPath(leaf), ShouldResemble, []string{})
		})
	})

	Convey("Given a nil node", t, func() {
		Convey("Then the path is empty", func() {
			So(GroupPath(nil), ShouldResemble, []string{})
		})
	})
}
