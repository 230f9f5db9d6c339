package vdom

import "strings"

// Platform answers the host-specific questions CreateElement asks about
// tags.
type Platform interface {
	// IsReservedTag reports whether tag is a native host element and
	// so never resolves to a component.
	IsReservedTag(tag string) bool
	// TagNamespace returns the namespace tag opens, or "".
	TagNamespace(tag string) string
}

// HTMLPlatform knows the HTML, SVG and MathML tag sets.
type HTMLPlatform struct{}

// DefaultPlatform is used when a Context supplies none.
var DefaultPlatform Platform = HTMLPlatform{}

var htmlTags = makeSet(
	"html,body,base,head,link,meta,style,title," +
		"address,article,aside,footer,header,h1,h2,h3,h4,h5,h6,hgroup,nav,section," +
		"div,dd,dl,dt,figcaption,figure,picture,hr,img,li,main,ol,p,pre,ul," +
		"a,b,abbr,bdi,bdo,br,cite,code,data,dfn,em,i,kbd,mark,q,rp,rt,rtc,ruby," +
		"s,samp,small,span,strong,sub,sup,time,u,var,wbr,area,audio,map,track,video," +
		"embed,object,param,source,canvas,script,noscript,del,ins," +
		"caption,col,colgroup,table,thead,tbody,td,th,tr," +
		"button,datalist,fieldset,form,input,label,legend,meter,optgroup,option," +
		"output,progress,select,textarea," +
		"details,dialog,menu,menuitem,summary," +
		"content,element,shadow,template,blockquote,iframe,tfoot")

var svgTags = makeSet(
	"svg,animate,circle,clippath,cursor,defs,desc,ellipse,filter,font-face," +
		"foreignObject,g,glyph,image,line,marker,mask,missing-glyph,path,pattern," +
		"polygon,polyline,rect,switch,symbol,text,textpath,tspan,use,view")

func makeSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Split(list, ",") {
		set[t] = true
	}
	return set
}

// IsReservedTag implements Platform.
func (HTMLPlatform) IsReservedTag(tag string) bool {
	return htmlTags[tag] || svgTags[tag] || tag == "math"
}

// TagNamespace implements Platform.
func (HTMLPlatform) TagNamespace(tag string) string {
	if svgTags[tag] {
		return "svg"
	}
	if tag == "math" {
		return "math"
	}
	return ""
}
