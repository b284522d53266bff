package browser

// Functions called with Runtime.callFunctionOn. Lookups run against `this`,
// the document of the current frame, and leave their matches in
// this.__boxker so each one can be fetched as a remote object.

const findScript = `function(strategy, value) {
	var doc = this, found = [], i;
	switch (strategy) {
	case 'id':
		found = doc.querySelectorAll('#' + CSS.escape(value));
		break;
	case 'class_name':
		found = doc.getElementsByClassName(value);
		break;
	case 'name':
		found = doc.getElementsByName(value);
		break;
	case 'tag_name':
		found = doc.getElementsByTagName(value);
		break;
	case 'css_selector':
		found = doc.querySelectorAll(value);
		break;
	case 'xpath':
		var snap = doc.evaluate(value, doc, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		for (i = 0; i < snap.snapshotLength; i++) {
			if (snap.snapshotItem(i).nodeType === 1) {
				found.push(snap.snapshotItem(i));
			}
		}
		break;
	case 'link_text':
	case 'partial_link_text':
		var links = doc.getElementsByTagName('a');
		for (i = 0; i < links.length; i++) {
			var text = (links[i].innerText || links[i].textContent || '').trim();
			if (strategy === 'link_text' ? text === value : text.indexOf(value) !== -1) {
				found.push(links[i]);
			}
		}
		break;
	default:
		throw new Error('unsupported strategy ' + strategy);
	}
	doc.__boxker = Array.prototype.slice.call(found);
	return doc.__boxker.length;
}`

const resultScript = `function(i) { return this.__boxker[i]; }`

// frameScript returns the contentDocument of the frame selected by name/id
// or index, null if there is none or it is cross origin.
const frameScript = `function(name, index) {
	var frame = null, frames = this.querySelectorAll('iframe,frame'), i;
	if (index >= 0) {
		frame = frames[index] || null;
	} else {
		for (i = 0; i < frames.length; i++) {
			if (frames[i].name === name || frames[i].id === name) {
				frame = frames[i];
				break;
			}
		}
	}
	return frame ? frame.contentDocument : null;
}`

const contentDocumentScript = `function() {
	var tag = this.tagName;
	if (tag !== 'IFRAME' && tag !== 'FRAME') {
		return null;
	}
	return this.contentDocument;
}`

// interactableScript returns an empty string or the reason the element
// cannot receive input
const interactableScript = `function() {
	if (!this.isConnected) {
		return 'detached';
	}
	if (this.disabled) {
		return 'disabled';
	}
	var style = this.ownerDocument.defaultView.getComputedStyle(this);
	if (style.display === 'none' || style.visibility === 'hidden') {
		return 'hidden';
	}
	var rect = this.getBoundingClientRect();
	if (rect.width === 0 && rect.height === 0) {
		return 'hidden';
	}
	return '';
}`

// centerScript scrolls the element into view and returns its centre in top
// level viewport coordinates
const centerScript = `function() {
	this.scrollIntoView({block: 'center', inline: 'center'});
	var rect = this.getBoundingClientRect();
	var x = rect.left + rect.width / 2, y = rect.top + rect.height / 2;
	var win = this.ownerDocument.defaultView;
	while (win && win.frameElement) {
		var fr = win.frameElement.getBoundingClientRect();
		x += fr.left + win.frameElement.clientLeft;
		y += fr.top + win.frameElement.clientTop;
		win = win.parent;
	}
	return [x, y];
}`

const textScript = `function() {
	if (this.tagName === 'SELECT') {
		var opt = this.options[this.selectedIndex];
		return opt ? opt.text : '';
	}
	var text = this.innerText;
	if (text === undefined) {
		text = this.textContent;
	}
	return (text || '').trim();
}`

const focusScript = `function() { this.focus(); }`

const clearScript = `function() {
	if (this.isContentEditable) {
		this.innerHTML = '';
	} else {
		this.value = '';
	}
	this.dispatchEvent(new Event('input', {bubbles: true}));
	this.dispatchEvent(new Event('change', {bubbles: true}));
}`

// selectScript returns an empty string on success, otherwise notselect, notfound or range
const selectScript = `function(mode, content) {
	if (this.tagName !== 'SELECT') {
		return 'notselect';
	}
	var idx = -1, i;
	if (mode === 'index') {
		idx = parseInt(content, 10);
		if (idx < 0 || idx >= this.options.length) {
			return 'range';
		}
	} else {
		for (i = 0; i < this.options.length; i++) {
			var opt = this.options[i];
			if ((mode === 'text' && opt.text.trim() === content) || (mode === 'value' && opt.value === content)) {
				idx = i;
				break;
			}
		}
		if (idx === -1) {
			return 'notfound';
		}
	}
	if (this.options[idx].disabled) {
		return 'disabled';
	}
	this.selectedIndex = idx;
	this.dispatchEvent(new Event('input', {bubbles: true}));
	this.dispatchEvent(new Event('change', {bubbles: true}));
	return '';
}`

// navigationFailedScript reads chrome's error page state
const navigationFailedScript = "loadTimeData.data_.errorCode"
