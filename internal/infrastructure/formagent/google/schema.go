package google

// schemaJS runs with a question list item bound to `this`. It stamps unique attributes on
// the input and option elements it finds and returns selectors for them, so they can be
// queried again from the Go side without relying on Google's generated class names.
const schemaJS = `() => {
	const question = this;
	const schema = {
		label: null,
		type: "text",
		required: false,
		input_locator: null,
		options: []
	};
	const stamp = (el, attr, prefix) => {
		let id = el.getAttribute(attr);
		if (!id) {
			id = prefix + "_" + Math.random().toString(36).substring(2, 12);
			el.setAttribute(attr, id);
		}
		return el.tagName.toLowerCase() + "[" + attr + "=\"" + id + "\"]";
	};
	const collect = (elements, attr, prefix) => elements.map((el, index) => ({
		label: el.textContent.trim() || "Option " + (index + 1),
		locator: stamp(el, attr, prefix + "_" + index)
	}));

	const label = question.querySelector("div[jsaction]:first-child span:first-child")
		|| question.querySelector("div[role='heading']");
	schema.label = label ? label.textContent.trim() || null : null;
	schema.required = question.querySelector("span[aria-label='Required question']") !== null
		|| question.querySelector("[aria-required='true']") !== null;

	const textarea = question.querySelector("textarea");
	const input = question.querySelector("input:not([type='hidden'])");
	if (textarea) {
		schema.type = "long_text";
		schema.input_locator = stamp(textarea, "data-applier-input", "input");
	} else if (input) {
		const kind = (input.getAttribute("type") || "text").toLowerCase();
		if (kind === "date") {
			schema.type = "date";
		} else if (kind === "time") {
			schema.type = "time";
		}
		schema.input_locator = stamp(input, "data-applier-input", "input");
	}

	const radioGroup = question.querySelector("div[role='radiogroup']");
	const listGroup = question.querySelector("div[role='list']");
	if (radioGroup) {
		schema.type = "radio";
		let options = Array.from(radioGroup.querySelectorAll("span[role='presentation'] label.docssharedWizToggleLabeledContainer"));
		if (options.length === 0) {
			options = Array.from(radioGroup.querySelectorAll("[role='radio']"));
		}
		schema.options = collect(options, "data-applier-radio", "radio");
	} else if (listGroup) {
		schema.type = listGroup.querySelector("div[role='checkbox']") ? "checkbox" : "multiple_choice";
		let options = Array.from(listGroup.querySelectorAll("div[role='listitem'] label.docssharedWizToggleLabeledContainer"));
		if (options.length === 0) {
			options = Array.from(listGroup.querySelectorAll("[role='checkbox'], [role='option']"));
		}
		schema.options = collect(options, "data-applier-choice", "choice");
	}
	return schema;
}`
